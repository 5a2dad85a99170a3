package huffmanfs

import "regexp"

// AlgorithmRule selects an algorithm and level for files whose name matches
// Pattern. Rules are evaluated in order and the first match wins.
type AlgorithmRule struct {
	Pattern   string
	Algorithm Algorithm
	Level     int
}

type compiledRule struct {
	re    *regexp.Regexp
	algo  Algorithm
	level int
}

func compileRules(rules []AlgorithmRule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, err
		}
		if err := validateLevel(r.Algorithm, r.Level); err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{re: re, algo: r.Algorithm, level: r.Level})
	}
	return compiled, nil
}

// selectAlgorithm returns the algorithm and level for name and whether a
// rule decided it.
func (cfs *FS) selectAlgorithm(name string) (Algorithm, int, bool) {
	for _, r := range cfs.rules {
		if r.re.MatchString(name) {
			return r.algo, r.level, true
		}
	}
	config := cfs.settings()
	return config.Algorithm, config.Level, false
}
