package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kilianp07/invsched/core/model"
	coremon "github.com/kilianp07/invsched/core/monitoring"
	coremqtt "github.com/kilianp07/invsched/core/mqtt"
	"github.com/kilianp07/invsched/core/scheduler"
	"github.com/kilianp07/invsched/infra/metrics"
)

// Request is a solve request received on the requests topic. The instance
// fields are inlined next to the request ID.
type Request struct {
	RequestID string `json:"request_id,omitempty"`
	model.Instance
}

// Report is published on the result topic of a request.
type Report struct {
	RequestID string            `json:"request_id"`
	RunID     string            `json:"run_id,omitempty"`
	Result    *scheduler.Result `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// ErrNoTransport is returned by Run when neither an MQTT transport nor an
// API address is configured.
var ErrNoTransport = errors.New("serve requires an mqtt broker or an api address")

// queueSize bounds the requests waiting to be solved.
const queueSize = 32

// Run subscribes to the requests topic and answers each request on its
// result topic until ctx is canceled. Requests are solved one at a time in
// arrival order. The HTTP API and the metrics endpoint run alongside when
// configured.
func (s *Service) Run(ctx context.Context) error {
	if s.transport == nil && s.apiAddr == "" {
		return ErrNoTransport
	}
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.apiAddr != "" {
		go func() {
			if err := s.ServeAPI(ctx, s.apiAddr); err != nil {
				s.log.Errorf("api server: %v", err)
				coremon.CaptureException(err, map[string]string{"module": "api"})
			}
		}()
	}
	if s.transport == nil {
		<-ctx.Done()
		return nil
	}

	queue := make(chan coremqtt.Message, queueSize)
	err := s.transport.Subscribe(s.topics.Requests(), func(m coremqtt.Message) {
		select {
		case queue <- m:
		case <-ctx.Done():
		default:
			s.log.Warnf("request queue full, dropping message on %s", m.Topic)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe requests: %w", err)
	}
	s.log.Infof("serving requests on %s", s.topics.Requests())

	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-queue:
			s.handle(ctx, m)
		}
	}
}

// handle solves one request and publishes its report.
func (s *Service) handle(ctx context.Context, m coremqtt.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("panic handling request on %s: %v", m.Topic, r)
			coremon.Recover(r)
		}
	}()
	rep := s.answer(ctx, m.Payload)
	payload, err := json.Marshal(rep)
	if err != nil {
		s.log.Errorf("encode report %s: %v", rep.RequestID, err)
		return
	}
	if err := s.transport.Publish(s.topics.Result(rep.RequestID), payload); err != nil {
		s.log.Errorf("publish report %s: %v", rep.RequestID, err)
	}
}

func (s *Service) answer(ctx context.Context, payload []byte) Report {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return Report{RequestID: "invalid", Error: fmt.Sprintf("decode request: %v", err)}
	}
	runID, res, err := s.Solve(ctx, &req.Instance)
	rep := Report{RequestID: req.RequestID, RunID: runID}
	if rep.RequestID == "" {
		rep.RequestID = runID
	}
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	rep.Result = &res
	return rep
}

// PublishResult publishes a locally computed result on the result topic of
// runID. It is a no-op without a transport.
func (s *Service) PublishResult(runID string, res scheduler.Result) error {
	if s.transport == nil {
		return nil
	}
	payload, err := json.Marshal(Report{RequestID: runID, RunID: runID, Result: &res})
	if err != nil {
		return err
	}
	return s.transport.Publish(s.topics.Result(runID), payload)
}
