package handlers

import (
	"github.com/mkrylov/tgrelay/internal/apikey"
	"github.com/mkrylov/tgrelay/internal/config"
)

type Handler struct {
	Cfg  config.Config
	Keys *apikey.Store
}

func NewHandler(cfg config.Config, keys *apikey.Store) *Handler {
	return &Handler{Cfg: cfg, Keys: keys}
}
