package agents

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// scriptedModel returns canned responses in order, used across the
// agent tests.
type scriptedModel struct {
	responses []string
	calls     int
	err       error
}

func (sm *scriptedModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if sm.err != nil {
		return nil, sm.err
	}
	if sm.calls >= len(sm.responses) {
		return nil, errors.New("scripted model exhausted")
	}
	resp := sm.responses[sm.calls]
	sm.calls++
	return schema.AssistantMessage(resp, nil), nil
}
