/*
Package metrics wraps datadog-go to facilitate metric recording.
Naming convention:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
*/
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/unit-xyz/goapi/base/log"
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)
	BumpTime(key string, tags ...string) Ender
}

type statsCli interface {
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

const ddRate = 1

var (
	initOnce sync.Once
	client   statsCli
)

func initClient() {
	host := viper.GetString("datadog_host")
	if host == "" {
		client = &LogClient{}
		return
	}
	addr := fmt.Sprintf("%s:%d", host, 8125)
	log.Log().WithField("addr", addr).Info("connecting to datadog agent")
	cli, err := statsd.NewBuffered(addr, 10)
	if err != nil {
		log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Warn("can't talk to datadog agent, metrics fall back to log")
		client = &LogClient{}
		return
	}
	client = cli
}

// New creates a metric client with the package name as prefix
func New(pkgName string) Service {
	initOnce.Do(initClient)
	return &impl{
		pkgName: pkgName,
		tags: []string{
			"env:" + viper.GetString("env_name"),
			"app:" + viper.GetString("app_name"),
		},
	}
}

type impl struct {
	pkgName string
	tags    []string
}

func (m *impl) key(key string) string {
	return m.pkgName + "." + key
}

func (m *impl) merge(tags []string) []string {
	out := append([]string{}, m.tags...)
	for i := 0; i+1 < len(tags); i += 2 {
		out = append(out, tags[i]+":"+tags[i+1])
	}
	return out
}

func (m *impl) BumpSum(key string, val float64, tags ...string) {
	if err := client.Count(m.key(key), int64(val), m.merge(tags), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"key": key, "err": err}).Debug("BumpSum failed")
	}
}

func (m *impl) BumpHistogram(key string, val float64, tags ...string) {
	if err := client.Histogram(m.key(key), val, m.merge(tags), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"key": key, "err": err}).Debug("BumpHistogram failed")
	}
}

type ender struct {
	fn func()
}

func (e *ender) End() {
	e.fn()
}

func (m *impl) BumpTime(key string, tags ...string) Ender {
	start := time.Now()
	return &ender{fn: func() {
		ms := float64(time.Since(start).Milliseconds())
		if err := client.TimeInMilliseconds(m.key(key), ms, m.merge(tags), ddRate); err != nil {
			log.Log().WithFields(log.Fields{"key": key, "err": err}).Debug("BumpTime failed")
		}
	}}
}
