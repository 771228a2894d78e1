package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups exercises. It decides how many sets the form offers and
// whether the exercise shows up in progress charts.
type Category string

const (
	Cardio    Category = "Cardio"
	Warmup    Category = "Warmup"
	Chest     Category = "Chest"
	Triceps   Category = "Triceps"
	Shoulders Category = "Shoulders"
	Legs      Category = "Legs"
	Back      Category = "Back"
	Biceps    Category = "Biceps"
	Core      Category = "Core"
)

// SetCount returns the number of set checkboxes for the category.
func (c Category) SetCount() int {
	switch c {
	case Cardio:
		return 1
	case Warmup:
		return 2
	default:
		return 3
	}
}

// Tracked reports whether weights for the category are charted.
func (c Category) Tracked() bool {
	return c != Cardio && c != Warmup
}

const imagePrefix = "./images/"

type Exercise struct {
	Name     string   `yaml:"name" json:"name"`
	Image    string   `yaml:"image,omitempty" json:"image,omitempty"`
	Category Category `yaml:"category" json:"category"`
}

// ImageRef returns the image path if it points into the bundled image
// directory and is not a placeholder.
func (e Exercise) ImageRef() (string, bool) {
	if e.Image == "" {
		return "", false
	}
	if strings.Contains(e.Image, "default") || !strings.HasPrefix(e.Image, imagePrefix) {
		return "", false
	}
	return e.Image, true
}

type Routine struct {
	Name      string     `yaml:"name" json:"name"`
	Exercises []Exercise `yaml:"exercises" json:"exercises"`
}

// Catalog is the fixed set of routines. It is never mutated after Load.
type Catalog struct {
	routines []Routine
	byName   map[string]int
}

type file struct {
	Routines []Routine `yaml:"routines"`
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	return New(f.Routines)
}

// New builds a catalog from routines in display order.
func New(routines []Routine) (*Catalog, error) {
	if len(routines) == 0 {
		return nil, errors.New("catalog has no routines")
	}
	c := &Catalog{
		routines: make([]Routine, 0, len(routines)),
		byName:   make(map[string]int, len(routines)),
	}
	for _, r := range routines {
		if r.Name == "" {
			return nil, errors.New("routine name is required")
		}
		if _, dup := c.byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate routine %q", r.Name)
		}
		seen := make(map[string]bool, len(r.Exercises))
		for _, ex := range r.Exercises {
			if ex.Name == "" {
				return nil, fmt.Errorf("routine %q: exercise name is required", r.Name)
			}
			if seen[ex.Name] {
				return nil, fmt.Errorf("routine %q: duplicate exercise %q", r.Name, ex.Name)
			}
			seen[ex.Name] = true
		}
		exercises := make([]Exercise, len(r.Exercises))
		copy(exercises, r.Exercises)
		c.byName[r.Name] = len(c.routines)
		c.routines = append(c.routines, Routine{Name: r.Name, Exercises: exercises})
	}
	return c, nil
}

// Routines returns all routines in display order.
func (c *Catalog) Routines() []Routine {
	out := make([]Routine, len(c.routines))
	copy(out, c.routines)
	return out
}

// RoutineNames returns routine names in display order.
func (c *Catalog) RoutineNames() []string {
	names := make([]string, len(c.routines))
	for i, r := range c.routines {
		names[i] = r.Name
	}
	return names
}

func (c *Catalog) Routine(name string) (Routine, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Routine{}, false
	}
	return c.routines[i], true
}

// Exercise returns the first definition of the named exercise, searching
// routines in display order.
func (c *Catalog) Exercise(name string) (Exercise, bool) {
	for _, r := range c.routines {
		for _, ex := range r.Exercises {
			if ex.Name == name {
				return ex, true
			}
		}
	}
	return Exercise{}, false
}

// ExerciseNames returns the unique exercise names across all routines,
// sorted alphabetically.
func (c *Catalog) ExerciseNames() []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, r := range c.routines {
		for _, ex := range r.Exercises {
			if !seen[ex.Name] {
				seen[ex.Name] = true
				names = append(names, ex.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}
