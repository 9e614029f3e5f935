// Package sender executes outbound Telegram calls asynchronously so a
// slow API round trip never blocks update handling.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"kavapos/internal/logger"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// RetryClassifier reports whether an error is transient.
type RetryClassifier func(error) bool

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	ShouldRetry  RetryClassifier
}

type job struct {
	ctx    context.Context
	action string
	run    func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
type Dispatcher struct {
	opts Options
	jobs chan job
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
	log  *slog.Logger
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}

	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
		stop: make(chan struct{}),
		log:  logger.Component("tg.sender"),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue schedules an outbound call. It never blocks: a saturated queue
// returns ErrQueueFull so the caller can fall back to a synchronous send.
func (d *Dispatcher) Enqueue(ctx context.Context, action string, run func() error) error {
	if run == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-d.stop:
		return ErrQueueClosed
	default:
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, run: run}:
		return nil
	case <-d.stop:
		return ErrQueueClosed
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs, drains the queue, and waits for workers.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.stop) })
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case j := <-d.jobs:
			d.execute(j)
		case <-d.stop:
			for {
				select {
				case j := <-d.jobs:
					d.execute(j)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) execute(j job) {
	attempts := d.opts.MaxRetries + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = j.run()
		if err == nil {
			return
		}
		if d.opts.ShouldRetry == nil || !d.opts.ShouldRetry(err) || attempt == attempts {
			break
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-j.ctx.Done():
			timer.Stop()
			err = j.ctx.Err()
			attempt = attempts
		case <-timer.C:
		}
	}
	if d.log != nil {
		d.log.LogAttrs(j.ctx, slog.LevelWarn, "send failed",
			slog.String("event", "send.fail"),
			slog.String("action", j.action),
			slog.String("rid", logger.RIDFrom(j.ctx)),
			slog.String("err", err.Error()),
		)
	}
}
