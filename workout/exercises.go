package workout

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/systomic777/alex-workout/guide"
)

// exerciseFile is the on-disk YAML schema. Durations are plain
// seconds so the file stays hand-editable.
type exerciseFile struct {
	Exercises []exerciseEntry `yaml:"exercises"`
}

type exerciseEntry struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Reps        int     `yaml:"reps"`
	RepDuration float64 `yaml:"rep_duration"`
	PrepTime    float64 `yaml:"prep_time"`
	CoolingTime float64 `yaml:"cooling_time"`
}

// LoadExercises reads an exercise sequence from a YAML file and
// validates every entry.
func LoadExercises(path string) ([]guide.Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exercises: %w", err)
	}
	return ParseExercises(data)
}

// ParseExercises decodes and validates a YAML exercise list.
func ParseExercises(data []byte) ([]guide.Exercise, error) {
	var file exerciseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse exercises: %w", err)
	}
	exercises := make([]guide.Exercise, 0, len(file.Exercises))
	for i, e := range file.Exercises {
		ex := guide.Exercise{
			ID:          e.ID,
			Name:        e.Name,
			Reps:        e.Reps,
			RepDuration: seconds(e.RepDuration),
			PrepTime:    seconds(e.PrepTime),
			CoolingTime: seconds(e.CoolingTime),
		}
		if err := ex.Validate(); err != nil {
			return nil, fmt.Errorf("exercise %d (%s): %w", i, e.Name, err)
		}
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
