package convert

import (
	"fmt"
	"sort"
)

// topologicalSort orders the transforms of one stage using Kahn's algorithm.
// Ties are broken by name so the order is deterministic.
func topologicalSort(transforms []Transformer) ([]Transformer, error) {
	if len(transforms) == 0 {
		return []Transformer{}, nil
	}

	byName := make(map[string]Transformer, len(transforms))
	for _, t := range transforms {
		name := t.Name()
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("duplicate transformer name: %q", name)
		}
		byName[name] = t
	}

	graph := make(map[string][]string, len(transforms))
	inDegree := make(map[string]int, len(transforms))
	for _, t := range transforms {
		graph[t.Name()] = nil
		inDegree[t.Name()] = 0
	}

	// Edges to transforms of other stages are satisfied by StageOrder.
	for _, t := range transforms {
		name := t.Name()
		deps := t.Dependencies()
		for _, dep := range deps.MustRunAfter {
			if _, exists := byName[dep]; exists {
				graph[dep] = append(graph[dep], name)
				inDegree[name]++
			}
		}
		for _, after := range deps.MustRunBefore {
			if _, exists := byName[after]; exists {
				graph[name] = append(graph[name], after)
				inDegree[after]++
			}
		}
	}

	var queue []string
	for _, t := range transforms {
		if inDegree[t.Name()] == 0 {
			queue = append(queue, t.Name())
		}
	}
	sort.Strings(queue)

	result := make([]Transformer, 0, len(transforms))
	visited := make(map[string]bool, len(transforms))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, byName[current])

		neighbors := graph[current]
		sort.Strings(neighbors)
		for _, neighbor := range neighbors {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(transforms) {
		var unvisited []string
		for _, t := range transforms {
			if !visited[t.Name()] {
				unvisited = append(unvisited, t.Name())
			}
		}
		sort.Strings(unvisited)
		return nil, fmt.Errorf("circular dependency detected involving transforms: %v", unvisited)
	}
	return result, nil
}

// BuildPipeline groups transforms by stage and sorts each stage by dependencies.
func BuildPipeline(transforms []Transformer) ([]Transformer, error) {
	if len(transforms) == 0 {
		return []Transformer{}, nil
	}

	byStage := make(map[TransformStage][]Transformer)
	for _, t := range transforms {
		if !IsValidStage(t.Stage()) {
			return nil, fmt.Errorf("transform %q has invalid stage: %q", t.Name(), t.Stage())
		}
		byStage[t.Stage()] = append(byStage[t.Stage()], t)
	}

	result := make([]Transformer, 0, len(transforms))
	for _, stage := range StageOrder {
		stageTransforms, exists := byStage[stage]
		if !exists {
			continue
		}
		sorted, err := topologicalSort(stageTransforms)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}
		result = append(result, sorted...)
	}
	return result, nil
}

// ValidateDependencies checks that every declared dependency names a known
// transform, that no dependency points against StageOrder, and that the
// graph has no cycles.
func ValidateDependencies(transforms []Transformer) error {
	stages := make(map[string]TransformStage, len(transforms))
	for _, t := range transforms {
		stages[t.Name()] = t.Stage()
	}

	for _, t := range transforms {
		deps := t.Dependencies()
		for _, dep := range deps.MustRunAfter {
			depStage, ok := stages[dep]
			if !ok {
				return fmt.Errorf("transform %q depends on missing transform %q", t.Name(), dep)
			}
			if StageIndex(depStage) > StageIndex(t.Stage()) {
				return fmt.Errorf("transform %q must run after %q, which belongs to the later stage %s", t.Name(), dep, depStage)
			}
		}
		for _, after := range deps.MustRunBefore {
			afterStage, ok := stages[after]
			if !ok {
				return fmt.Errorf("transform %q requires missing transform %q", t.Name(), after)
			}
			if StageIndex(afterStage) < StageIndex(t.Stage()) {
				return fmt.Errorf("transform %q must run before %q, which belongs to the earlier stage %s", t.Name(), after, afterStage)
			}
		}
	}

	_, err := BuildPipeline(transforms)
	return err
}
