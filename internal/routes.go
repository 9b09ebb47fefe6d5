package internal

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// RouteSpec is one entry of the route registration file.
type RouteSpec struct {
	Method     string `yaml:"method"`
	Path       string `yaml:"path"`
	Controller string `yaml:"controller"`
	Action     string `yaml:"action"`
}

// LoadRoutes reads an ordered YAML list of route specs:
//
//	# routes.yaml
//	- {method: GET, path: /, controller: home, action: index}
//	- {method: POST, path: /login, controller: auth, action: login}
func LoadRoutes(r io.Reader) ([]RouteSpec, error) {
	var specs []RouteSpec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&specs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidRouteSpec, err)
	}

	for i, s := range specs {
		var missing []string
		if strings.TrimSpace(s.Method) == "" {
			missing = append(missing, "method")
		}
		if s.Path == "" {
			missing = append(missing, "path")
		}
		if s.Controller == "" {
			missing = append(missing, "controller")
		}
		if s.Action == "" {
			missing = append(missing, "action")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: entry %d: missing %s", ErrInvalidRouteSpec, i, strings.Join(missing, ", "))
		}
		if !strings.HasPrefix(s.Path, "/") {
			return nil, fmt.Errorf("%w: entry %d: path %q must start with /", ErrInvalidRouteSpec, i, s.Path)
		}
	}
	return specs, nil
}
