package events

import (
	"context"

	"entitycore/src/domain/model"
)

// FanOut forwards every event to each emitter in order.
type FanOut struct {
	emitters []model.Emitter
}

func NewFanOut(emitters ...model.Emitter) *FanOut {
	return &FanOut{emitters: emitters}
}

func (f *FanOut) Emit(ctx context.Context, topic string, payload []any) {
	for _, emitter := range f.emitters {
		if emitter != nil {
			emitter.Emit(ctx, topic, payload)
		}
	}
}
