package gui

import (
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"edgevision-studio/internal/core"
)

// Processor runs requests on a single worker goroutine. Only the most
// recent pending submission is kept; older ones are dropped unprocessed.
type Processor struct {
	handler *core.Handler
	logger  logrus.FieldLogger

	mu      sync.Mutex
	pending *job
	wake    chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
	stopped bool

	// Callbacks run on the worker goroutine. onResult receives ownership
	// of the result and the label submitted with its input.
	onResult func(res core.Result, label string)
	onError  func(error)
}

type job struct {
	req   core.Request
	input gocv.Mat
	label string
}

func NewProcessor(handler *core.Handler, logger logrus.FieldLogger) *Processor {
	return &Processor{
		handler: handler,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func (p *Processor) SetCallbacks(onResult func(core.Result, string), onError func(error)) {
	p.onResult = onResult
	p.onError = onError
}

// Start launches the worker
func (p *Processor) Start() {
	p.wg.Add(1)
	go p.run()
}

// Submit queues req for input. input is cloned; the caller keeps ownership.
// label names the input and is handed back with the result.
func (p *Processor) Submit(req core.Request, input gocv.Mat, label string) {
	next := &job{req: req, input: input.Clone(), label: label}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		next.input.Close()
		return
	}
	if p.pending != nil {
		p.pending.input.Close()
		p.logger.Debug("Dropped superseded request")
	}
	p.pending = next
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Stop waits for the in-flight request and discards anything pending
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	if p.pending != nil {
		p.pending.input.Close()
		p.pending = nil
	}
	p.mu.Unlock()

	close(p.stop)
	p.wg.Wait()
}

func (p *Processor) take() *job {
	p.mu.Lock()
	defer p.mu.Unlock()
	j := p.pending
	p.pending = nil
	return j
}

func (p *Processor) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stop:
			return
		case <-p.wake:
		}

		j := p.take()
		if j == nil {
			continue
		}

		res, err := p.handler.Handle(j.req, j.input)
		j.input.Close()

		if err != nil {
			p.logger.WithError(err).Warn("Processing failed")
			if p.onError != nil {
				p.onError(err)
			}
			continue
		}

		if p.onResult != nil {
			p.onResult(res, j.label)
		} else {
			res.Close()
		}
	}
}
