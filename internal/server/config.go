package server

import (
	"time"
)

type Config struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	AntidosBuckets  int           `yaml:"antidosBuckets"`
	AntidosPeriod   time.Duration `yaml:"antidosPeriod"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
	AdminKey        string        `yaml:"adminKey"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}
