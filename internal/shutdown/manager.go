package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
)

// Service is a resource released on exit.
type Service interface {
	Name() string
	Shutdown(ctx context.Context) error
}

// Manager releases registered services in reverse registration order.
type Manager struct {
	services []Service
	timeout  time.Duration
	mu       sync.Mutex
	done     bool
}

func NewManager(timeout time.Duration) *Manager {
	return &Manager{timeout: timeout}
}

func (m *Manager) Register(service Service) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.services = append(m.services, service)
	logutils.Log.WithField("service", service.Name()).Debug("Service registered for shutdown")
}

// RegisterFunc registers a plain close function under name.
func (m *Manager) RegisterFunc(name string, fn func() error) {
	m.Register(funcService{name: name, fn: fn})
}

// Shutdown runs every service once, even if earlier ones fail, and joins their errors.
// Later calls do nothing.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil
	}
	m.done = true
	services := make([]Service, len(m.services))
	copy(services, m.services)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		svc := services[i]
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("service %s skipped: shutdown timeout exceeded", svc.Name()))
			continue
		}
		if err := svc.Shutdown(ctx); err != nil {
			logutils.Log.WithError(err).WithField("service", svc.Name()).Error("Error during service shutdown")
			errs = append(errs, fmt.Errorf("service %s shutdown failed: %w", svc.Name(), err))
			continue
		}
		logutils.Log.WithField("service", svc.Name()).Debug("Service shutdown completed")
	}
	return errors.Join(errs...)
}

type funcService struct {
	name string
	fn   func() error
}

func (f funcService) Name() string { return f.name }

func (f funcService) Shutdown(context.Context) error { return f.fn() }
