package bootstrap

import (
	"github.com/kbukum/drivegate/config"
)

// Config is the constraint on application configuration types. Any struct
// embedding config.ServiceConfig gets GetServiceConfig by promotion and only
// needs ApplyDefaults and Validate covering its own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
