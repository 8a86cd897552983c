package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkrylov/tgrelay/internal/apikey"
	"github.com/mkrylov/tgrelay/internal/common"
)

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"status": "up"})
}

type createKeyReq struct {
	// Key is optional; empty means generate one.
	Key string `json:"key"`
}

// CreateKey issues a credential. The plaintext is returned exactly once;
// only the (hash, prefix) tuple is stored.
func (h *Handler) CreateKey(c *gin.Context) {
	var req createKeyReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
			return
		}
	}

	key := req.Key
	if key == "" {
		var err error
		key, err = apikey.Generate()
		if err != nil {
			common.Fail(c, http.StatusInternalServerError, 20001, "failed to generate key")
			return
		}
	}

	if err := h.Keys.Issue(c.Request.Context(), key); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to store key")
		return
	}

	prefix := key
	if len(prefix) > apikey.PrefixLen {
		prefix = prefix[:apikey.PrefixLen]
	}
	common.OK(c, gin.H{"key": key, "prefix": prefix})
}

// ListKeys returns the stored plaintext prefixes; full keys are not
// recoverable.
func (h *Handler) ListKeys(c *gin.Context) {
	prefixes, err := h.Keys.Prefixes(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to list keys")
		return
	}
	common.OK(c, gin.H{"prefixes": prefixes})
}
