// Package metricsource provides live metric sources for playback.
package metricsource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/pulse/internal/domain/model"
)

// ErrInvalidScript reports a timeline that cannot be replayed.
var ErrInvalidScript = errors.New("invalid metric script")

// Step is one scripted sample, emitted After the previous step.
type Step struct {
	After              time.Duration `yaml:"after"`
	model.MetricSample `yaml:",inline"`
}

// Script replays a fixed timeline of samples. It satisfies
// playback.MetricSource.
type Script struct {
	steps []Step

	once sync.Once
	out  chan model.MetricSample
	stop chan struct{}
	halt sync.Once
}

type scriptFile struct {
	Samples []Step `yaml:"samples"`
}

// NewScript creates a script over steps.
func NewScript(steps []Step) *Script {
	return &Script{
		steps: steps,
		out:   make(chan model.MetricSample),
		stop:  make(chan struct{}),
	}
}

// Decode reads a YAML timeline:
//
//	samples:
//	  - after: 2s
//	    reps: 3
//	    form_score: 88
func Decode(r io.Reader) (*Script, error) {
	var f scriptFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	for i, s := range f.Samples {
		if s.After < 0 {
			return nil, fmt.Errorf("%w: step %d has negative delay", ErrInvalidScript, i)
		}
		if s.Reps != nil && *s.Reps < 0 {
			return nil, fmt.Errorf("%w: step %d has negative reps", ErrInvalidScript, i)
		}
	}
	return NewScript(f.Samples), nil
}

// Load reads a timeline file.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Len returns the number of scripted samples.
func (s *Script) Len() int { return len(s.steps) }

// Samples starts the replay on first call and returns the sample channel,
// closed after the last step or Stop.
func (s *Script) Samples() <-chan model.MetricSample {
	s.once.Do(func() { go s.play() })
	return s.out
}

// Stop ends the replay early.
func (s *Script) Stop() {
	s.halt.Do(func() { close(s.stop) })
}

func (s *Script) play() {
	defer close(s.out)
	for _, step := range s.steps {
		if step.After > 0 {
			t := time.NewTimer(step.After)
			select {
			case <-t.C:
			case <-s.stop:
				t.Stop()
				return
			}
		}
		select {
		case s.out <- step.MetricSample:
		case <-s.stop:
			return
		}
	}
}
