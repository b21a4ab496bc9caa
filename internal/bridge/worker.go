package bridge

import (
	"context"

	"github.com/danmuck/posebridge/internal/pose"
)

type readRequest struct {
	ctx   context.Context
	reply chan readResult
}

type readResult struct {
	rec pose.Record
	err error
}

// Worker confines a Reader (and its link) to one goroutine. Other goroutines
// ask for poses through Request.
type Worker struct {
	reader   *Reader
	requests chan readRequest
}

func NewWorker(reader *Reader) *Worker {
	return &Worker{
		reader:   reader,
		requests: make(chan readRequest),
	}
}

// Run serves requests one at a time until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.requests:
			rec, err := w.reader.ReadPose(req.ctx)
			req.reply <- readResult{rec: rec, err: err}
		}
	}
}

// Request waits for the next validated pose read by the worker.
func (w *Worker) Request(ctx context.Context) (pose.Record, error) {
	req := readRequest{ctx: ctx, reply: make(chan readResult, 1)}
	select {
	case <-ctx.Done():
		return pose.Record{}, ctx.Err()
	case w.requests <- req:
	}
	select {
	case <-ctx.Done():
		return pose.Record{}, ctx.Err()
	case res := <-req.reply:
		return res.rec, res.err
	}
}
