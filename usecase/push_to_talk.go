package usecase

import (
	"context"

	"go.uber.org/zap"
)

const edgeQueueSize = 32

// PushToTalk serializes the key-down and key-up edges of every capture
// trigger (global hotkey and ctrl+r) onto one goroutine, so a stop always
// completes before the next start is handled.
type PushToTalk struct {
	service *ConversationService
	edges   chan bool // true for key-down
	logger  *zap.Logger
}

// NewPushToTalk creates the edge queue. Run must be started for edges to be handled.
func NewPushToTalk(service *ConversationService, logger *zap.Logger) *PushToTalk {
	return &PushToTalk{
		service: service,
		edges:   make(chan bool, edgeQueueSize),
		logger:  logger,
	}
}

// Press queues a key-down edge. It never blocks.
func (p *PushToTalk) Press() {
	p.enqueue(true)
}

// Release queues a key-up edge. It never blocks.
func (p *PushToTalk) Release() {
	p.enqueue(false)
}

func (p *PushToTalk) enqueue(down bool) {
	select {
	case p.edges <- down:
	default:
		p.logger.Warn("Dropping push-to-talk edge, queue is full", zap.Bool("down", down))
	}
}

// Run handles queued edges in arrival order until ctx is done
func (p *PushToTalk) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case down := <-p.edges:
			if down {
				p.service.OnSpeechCaptureStart()
			} else {
				p.service.OnSpeechCaptureStop(ctx)
			}
		}
	}
}
