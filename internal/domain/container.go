// Package domain contains the business types used throughout the
// application. It imports no third-party packages; Service carries
// yaml/mapstructure/validate struct tags for manifest parsing.
package domain

import "regexp"

// NameRegex is the allowed shape for a service name and, by extension, its
// container name in the engine: it must match [a-zA-Z0-9][a-zA-Z0-9_.-]*.
var NameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ContainerState is the engine's observable lifecycle state for a
// container, normalized across engines.
type ContainerState string

const (
	ContainerNotCreated ContainerState = "not_created"
	ContainerStopped    ContainerState = "stopped"
	ContainerRunning    ContainerState = "running"
)

// ContainerHealth is the engine's observable health for a container.
// It is meaningful only when the container was created with a
// healthcheck; otherwise the engine reports NotApplicable.
type ContainerHealth string

const (
	HealthHealthy       ContainerHealth = "healthy"
	HealthUnhealthy     ContainerHealth = "unhealthy"
	HealthStarting      ContainerHealth = "starting"
	HealthUnknown       ContainerHealth = "unknown"
	HealthNotApplicable ContainerHealth = "not_applicable"
)

// Container is the minimal observable view of an engine container that
// the orchestrator reasons about.
type Container struct {
	Name  string
	State ContainerState
}

// ServiceKind discriminates a spoke's role. It only affects filtering
// (--dbs-only / --services-only and the `db` / `service` command
// groups); the engine treats every kind identically.
type ServiceKind string

const (
	KindGeneric  ServiceKind = "generic"
	KindDatabase ServiceKind = "database"
)

// Healthcheck is a service's optional engine healthcheck declaration.
// It is only meaningful when Command is non-empty; a Service with no
// Command is treated as NotApplicable and is considered ready the
// instant the engine reports it Running.
type Healthcheck struct {
	Command  string
	Interval string
	Timeout  string
	Retries  int
}

// Service is the declarative unit of a spoke, as parsed from a services
// manifest.
type Service struct {
	Name        string      `yaml:"name" mapstructure:"name" validate:"required"`
	Image       string      `yaml:"image" mapstructure:"image" validate:"required"`
	Kind        ServiceKind `yaml:"type" mapstructure:"type"`
	Ports       []string    `yaml:"ports" mapstructure:"ports"`
	Env         []string    `yaml:"env" mapstructure:"env"`
	Volumes     []string    `yaml:"volumes" mapstructure:"volumes"`
	Healthcheck *Healthcheck `yaml:"-" mapstructure:"-"`

	// Raw healthcheck fields as they appear flattened in the manifest
	// (healthcheck_command, healthcheck_interval, ...); Normalize()
	// folds these into Healthcheck above during parsing.
	HealthcheckCommand  string `yaml:"healthcheck_command,omitempty"`
	HealthcheckInterval string `yaml:"healthcheck_interval,omitempty"`
	HealthcheckTimeout  string `yaml:"healthcheck_timeout,omitempty"`
	HealthcheckRetries  *int   `yaml:"healthcheck_retries,omitempty"`
}

// Normalize defaults Kind to Generic and folds the flattened
// healthcheck_* manifest fields into Healthcheck, the way
// original_source's Service::to_spec does for its ContainerSpec.
func (s *Service) Normalize() {
	if s.Kind == "" {
		s.Kind = KindGeneric
	}
	if s.HealthcheckCommand == "" {
		return
	}
	retries := 3
	if s.HealthcheckRetries != nil {
		retries = *s.HealthcheckRetries
	}
	s.Healthcheck = &Healthcheck{
		Command:  s.HealthcheckCommand,
		Interval: s.HealthcheckInterval,
		Timeout:  s.HealthcheckTimeout,
		Retries:  retries,
	}
}

// ToSpec converts a Service into the imperative ContainerSpec the engine
// adapter consumes, mirroring original_source's Service::to_spec.
func (s *Service) ToSpec() *ContainerSpec {
	spec := &ContainerSpec{
		Name:    s.Name,
		Image:   s.Image,
		Ports:   s.Ports,
		Env:     s.Env,
		Volumes: s.Volumes,
	}
	if s.Healthcheck != nil {
		spec.HealthcheckCommand = s.Healthcheck.Command
		spec.HealthcheckInterval = s.Healthcheck.Interval
		spec.HealthcheckTimeout = s.Healthcheck.Timeout
		spec.HealthcheckRetries = s.Healthcheck.Retries
	}
	return spec
}

// ContainerSpec is the imperative image of a service or the hub, passed
// to the engine adapter's Create.
type ContainerSpec struct {
	Name        string
	Image       string
	Ports       []string
	Env         []string
	Volumes     []string
	Network     string // "host" or "" (engine-default bridge)
	Userns      string // e.g. "keep-id"
	SecurityOpt string
	Workdir     string
	ExtraArgs   []string

	HealthcheckCommand  string
	HealthcheckInterval string
	HealthcheckTimeout  string
	HealthcheckRetries  int
}

// HasHealthcheck reports whether the spec declares an engine healthcheck.
func (c *ContainerSpec) HasHealthcheck() bool {
	return c.HealthcheckCommand != ""
}
