package config

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/duration"
)

var portPattern = regexp.MustCompile(`^\d+:\d+(/(tcp|udp))?$`)

var structValidator = validator.New()

// validateClosure runs struct-tag validation on every service, then
// the closure-level checks spec §4.3 requires: unique names, the name
// regex, the hub-name collision, port syntax, and duration parsing.
func validateClosure(cfg domain.AppConfig, services []domain.Service) error {
	seen := make(map[string]bool, len(services))

	for _, svc := range services {
		if err := structValidator.Struct(&svc); err != nil {
			return domain.WrapConfigError(err, "service %q failed validation", svc.Name)
		}
		if !domain.NameRegex.MatchString(svc.Name) {
			return domain.NewConfigError("service name %q does not match %s", svc.Name, domain.NameRegex.String())
		}
		if seen[svc.Name] {
			return domain.NewConfigError("duplicate service name: %s", svc.Name)
		}
		seen[svc.Name] = true

		hubName := cfg.Container.Name
		if hubName == "" {
			hubName = DefaultHubName
		}
		if svc.Name == hubName {
			return domain.NewConfigError("service name %q collides with the hub name", svc.Name)
		}

		for _, p := range svc.Ports {
			if !portPattern.MatchString(p) {
				return domain.NewConfigError("service %q has an invalid port mapping %q", svc.Name, p)
			}
		}

		if err := validateHealthcheck(svc); err != nil {
			return err
		}
	}

	return nil
}

// validateHealthcheck enforces that retries >= 1 whenever a
// healthcheck command is set, and that interval/timeout parse as
// duration strings. A service with no command and any retries value
// (including 0) is valid: it is NotApplicable and never polled.
func validateHealthcheck(svc domain.Service) error {
	if svc.Healthcheck == nil {
		return nil
	}
	hc := svc.Healthcheck
	if hc.Command == "" {
		return nil
	}
	if hc.Retries < 1 {
		return domain.NewConfigError("service %q healthcheck_retries must be >= 1 when healthcheck_command is set", svc.Name)
	}
	if hc.Interval != "" {
		if _, err := duration.Parse(hc.Interval); err != nil {
			return domain.WrapConfigError(err, "service %q healthcheck_interval", svc.Name)
		}
	}
	if hc.Timeout != "" {
		if _, err := duration.Parse(hc.Timeout); err != nil {
			return domain.WrapConfigError(err, "service %q healthcheck_timeout", svc.Name)
		}
	}
	return nil
}
