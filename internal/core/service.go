package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/rowmap/internal/logging"
)

// DefaultQueryTimeout bounds a run when the service was created without a timeout.
var DefaultQueryTimeout = 30 * time.Second

// Service runs registered queries against a Source and maps the results.
type Service struct {
	src     Source
	timeout time.Duration
	limiter *Limiter
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLimiter bounds concurrent runs. Without it runs are unbounded.
func WithLimiter(l *Limiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// NewService creates a new Service instance.
// A non-positive timeout falls back to DefaultQueryTimeout.
func NewService(src Source, timeout time.Duration, opts ...ServiceOption) (*Service, error) {
	if src == nil {
		return nil, errors.New("service needs a query source")
	}
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	s := &Service{src: src, timeout: timeout}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LimiterStatus reports the run limiter's state. The zero value means runs
// are unbounded.
func (s *Service) LimiterStatus() LimiterStatus {
	if s.limiter == nil {
		return LimiterStatus{}
	}
	return s.limiter.Status()
}

// WaitForRuns blocks until in-flight runs finish or ctx ends.
func (s *Service) WaitForRuns(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.WaitForDrain(ctx)
}

// ListQueries returns information about all registered queries.
func (s *Service) ListQueries() []QueryInfo {
	defs := All()
	infos := make([]QueryInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListQueriesByGroup returns queries organized by group.
func (s *Service) ListQueriesByGroup() map[string][]QueryInfo {
	result := make(map[string][]QueryInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// Describe returns the definition registered under key.
func (s *Service) Describe(key string) (QueryDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return QueryDefinition{}, fmt.Errorf("%w: %s", ErrQueryNotFound, key)
	}
	return def, nil
}

// RunText parses textual arguments against the query's declared parameters,
// then runs it.
func (s *Service) RunText(ctx context.Context, key string, raw []string) (*RunResult, error) {
	def, err := s.Describe(key)
	if err != nil {
		return nil, err
	}

	args, err := ParseArgs(def.Info.Params, raw)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", key, err)
	}
	return s.run(ctx, def, args)
}

// Run executes the query registered under key and maps its rows onto the
// query's target according to its shape. When the query declares parameters
// the number of args must match.
func (s *Service) Run(ctx context.Context, key string, args ...any) (*RunResult, error) {
	def, err := s.Describe(key)
	if err != nil {
		return nil, err
	}

	if n := len(def.Info.Params); n > 0 && len(args) != n {
		return nil, fmt.Errorf("run %s: %w: got %d, want %d", key, ErrArgCount, len(args), n)
	}
	return s.run(ctx, def, args)
}

func (s *Service) run(ctx context.Context, def QueryDefinition, args []any) (*RunResult, error) {
	ctx = logging.ContextWithQuery(ctx, def.Info.Key)
	logger := logging.FromContext(ctx)

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			logger.Warn("query not started", "error", err, "limiter", s.limiter.Status())
			return nil, fmt.Errorf("run %s: %w", def.Info.Key, err)
		}
		defer s.limiter.Release()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()

	rs, err := s.src.Query(ctx, def.SQL, args...)
	if err != nil {
		logger.Error("query failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("run %s: %w", def.Info.Key, err)
	}

	data, err := def.Target.Map(rs, def.Shape, def.GroupBy)
	if err != nil {
		logger.Error("mapping failed", "target", def.Target.Name, "rows", rs.Len(), "error", err)
		return nil, fmt.Errorf("run %s: %w", def.Info.Key, err)
	}

	duration := time.Since(start)
	logger.Info("query completed",
		"target", def.Target.Name,
		"shape", def.Shape,
		"rows", rs.Len(),
		"duration_ms", duration.Milliseconds(),
	)

	return &RunResult{
		Key:        def.Info.Key,
		Shape:      def.Shape,
		Target:     def.Target.Name,
		Columns:    rs.Columns(),
		RowCount:   rs.Len(),
		DurationMS: duration.Milliseconds(),
		Data:       data,
		Duration:   duration,
		Table:      rs,
	}, nil
}
