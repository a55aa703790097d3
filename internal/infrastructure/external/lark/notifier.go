package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// Notifier implements port.ApprovalNotifier with an interactive Lark card.
// Failures are returned to the caller but never fail the workflow; the
// suspended state is already durable when the notification fires.
type Notifier struct {
	client *Client
	logger *zap.Logger
}

// NewNotifier creates a new Lark approval notifier
func NewNotifier(client *Client, logger *zap.Logger) *Notifier {
	return &Notifier{
		client: client,
		logger: logger,
	}
}

// NotifyApprovalRequired sends the pending-approval card to the reviewer tier
func (n *Notifier) NotifyApprovalRequired(ctx context.Context, p *entity.Projection) error {
	openID := n.receiverFor(p.ApprovalRequiredLevel)
	if openID == "" {
		return fmt.Errorf("no reviewer configured for approval level %s", p.ApprovalRequiredLevel)
	}

	card, err := buildApprovalCard(p)
	if err != nil {
		return fmt.Errorf("failed to build approval card: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("open_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(openID).
			MsgType("interactive").
			Content(card).
			Build()).
		Build()

	resp, err := n.client.client.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send approval notification: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("Lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	n.logger.Info("Approval notification sent",
		zap.String("workflow_id", p.WorkflowID),
		zap.String("approval_level", string(p.ApprovalRequiredLevel)))

	return nil
}

func (n *Notifier) receiverFor(level entity.ApprovalLevel) string {
	switch level {
	case entity.LevelExecutive:
		return n.client.cfg.ExecutiveOpenID
	case entity.LevelManager:
		return n.client.cfg.ManagerOpenID
	default:
		return ""
	}
}

func buildApprovalCard(p *entity.Projection) (string, error) {
	confidence := "n/a"
	if p.ForecastConfidence != nil {
		confidence = fmt.Sprintf("%.2f", *p.ForecastConfidence)
	}

	card := map[string]interface{}{
		"config": map[string]interface{}{
			"wide_screen_mode": true,
		},
		"header": map[string]interface{}{
			"template": "orange",
			"title": map[string]interface{}{
				"tag":     "plain_text",
				"content": "Procurement approval required",
			},
		},
		"elements": []interface{}{
			map[string]interface{}{
				"tag": "div",
				"text": map[string]interface{}{
					"tag": "lark_md",
					"content": fmt.Sprintf(
						"**Workflow:** %s\n**SKU:** %s (%s)\n**Quantity:** %d\n**Order value:** %.2f\n**Forecast confidence:** %s\n**Required level:** %s",
						p.WorkflowID, p.SKU, p.SKUID, p.RecommendedQuantity, p.OrderValue, confidence, p.ApprovalRequiredLevel),
				},
			},
			map[string]interface{}{
				"tag": "note",
				"elements": []interface{}{
					map[string]interface{}{
						"tag":     "plain_text",
						"content": fmt.Sprintf("Resume via POST /api/v1/workflows/%s/resume", p.WorkflowID),
					},
				},
			},
		},
	}

	data, err := json.Marshal(card)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NoopNotifier satisfies port.ApprovalNotifier when Lark is not configured
type NoopNotifier struct {
	logger *zap.Logger
}

// NewNoopNotifier creates a notifier that only logs
func NewNoopNotifier(logger *zap.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// NotifyApprovalRequired logs the pending approval and succeeds
func (n *NoopNotifier) NotifyApprovalRequired(ctx context.Context, p *entity.Projection) error {
	n.logger.Info("Approval required (notification disabled)",
		zap.String("workflow_id", p.WorkflowID),
		zap.String("approval_level", string(p.ApprovalRequiredLevel)))
	return nil
}

// Verify interface compliance
var (
	_ port.ApprovalNotifier = (*Notifier)(nil)
	_ port.ApprovalNotifier = (*NoopNotifier)(nil)
)
