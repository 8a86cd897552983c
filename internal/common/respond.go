package common

import "github.com/gin-gonic/gin"

type response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(200, response{Code: 0, Msg: "ok", Data: data})
}

func Fail(c *gin.Context, status, code int, msg string) {
	c.JSON(status, response{Code: code, Msg: msg})
}
