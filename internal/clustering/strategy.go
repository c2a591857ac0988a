package clustering

import (
	"fmt"
)

// Strategy selects how initial centroids are chosen.
type Strategy int

const (
	StrategyManual Strategy = iota
	StrategyRandom
	StrategyKMeansPlusPlus
	StrategyFarthestFirst
)

var strategyNames = map[Strategy]string{
	StrategyManual:         "manual",
	StrategyRandom:         "random",
	StrategyKMeansPlusPlus: "kmeans++",
	StrategyFarthestFirst:  "farthest_first",
}

// Strategies lists every supported strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{StrategyManual, StrategyRandom, StrategyKMeansPlusPlus, StrategyFarthestFirst}
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy maps a wire tag ("manual", "random", "kmeans++",
// "farthest_first") to its Strategy.
func ParseStrategy(tag string) (Strategy, error) {
	for s, name := range strategyNames {
		if name == tag {
			return s, nil
		}
	}
	return 0, NewClusterError("parse strategy", ErrInvalidParameter,
		fmt.Sprintf("unknown initialization method %q", tag))
}

func (s Strategy) MarshalText() ([]byte, error) {
	name, ok := strategyNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %d", int(s))
	}
	return []byte(name), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
