package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/database"
)

type HealthService struct {
	logger *logrus.Logger
	checks map[string]healthCheck

	healthCheckStatus *prometheus.GaugeVec
}

type healthCheck struct {
	critical bool
	check    func(ctx context.Context) error
}

type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Services    map[string]string `json:"services"`
	Critical    []string          `json:"critical_failures,omitempty"`
	NonCritical []string          `json:"non_critical_failures,omitempty"`
}

// NewHealthService checks Postgres (critical) and Redis (non-critical) when configured.
func NewHealthService(db *database.Database, logger *logrus.Logger) *HealthService {
	hs := &HealthService{
		logger: logger,
		checks: make(map[string]healthCheck),
	}

	if db != nil && db.PG != nil {
		hs.checks["postgresql"] = healthCheck{critical: true, check: db.PG.Ping}
	}
	if db != nil && db.Redis != nil {
		hs.checks["redis"] = healthCheck{check: func(ctx context.Context) error {
			return db.Redis.Ping(ctx).Err()
		}}
	}

	hs.healthCheckStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wardrobe_health_check_status",
		Help: "Health check status (1 = healthy, 0 = unhealthy)",
	}, []string{"service"})
	if err := prometheus.Register(hs.healthCheckStatus); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			hs.healthCheckStatus = already.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			logger.WithError(err).Warn("Failed to register health check metric")
		}
	}

	return hs
}

func (s *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	for name, hc := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := hc.check(checkCtx)
		cancel()

		if err == nil {
			status.Services[name] = "healthy"
			s.healthCheckStatus.WithLabelValues(name).Set(1)
			continue
		}

		status.Services[name] = "unhealthy"
		s.healthCheckStatus.WithLabelValues(name).Set(0)
		if hc.critical {
			status.Critical = append(status.Critical, name)
			s.logger.WithError(err).Errorf("Critical service %s is unhealthy", name)
		} else {
			status.NonCritical = append(status.NonCritical, name)
			s.logger.WithError(err).Warnf("Non-critical service %s is unhealthy", name)
		}
	}

	switch {
	case len(status.Critical) > 0:
		status.Status = "unhealthy"
	case len(status.NonCritical) > 0:
		status.Status = "degraded"
	}
	return status
}
