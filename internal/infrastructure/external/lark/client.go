// Package lark notifies reviewers over Lark when a workflow suspends at the
// approval gate.
package lark

import (
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"go.uber.org/zap"
)

// Config holds Lark client configuration
type Config struct {
	AppID           string
	AppSecret       string
	ManagerOpenID   string // reviewer notified for manager-tier approvals
	ExecutiveOpenID string // reviewer notified for executive-tier approvals
}

// Client wraps the Lark SDK client
type Client struct {
	client *lark.Client
	cfg    Config
	logger *zap.Logger
}

// NewClient creates a new Lark SDK client wrapper
func NewClient(cfg Config, logger *zap.Logger) *Client {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &Client{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}
