package optim

import (
	"time"

	"github.com/dlclark/regexp2"
	"k8s.io/klog/v2"
)

// patternMatchTimeout bounds a single exclusion pattern match. Backtracking
// patterns can be pathological; names are short so this is never hit in practice.
const patternMatchTimeout = time.Second

// outputSuffix matches the ":<n>" output index that graph frameworks append to
// variable names ("layer/bias:0").
var outputSuffix = regexp2.MustCompile(`:\d+$`, regexp2.None)

// decayPolicy decides which parameters receive decoupled weight decay.
//
// Patterns use Perl/Python-compatible syntax (lookarounds, backreferences) so
// exclusion lists written for other training frameworks carry over unchanged.
type decayPolicy struct {
	rate     float64
	patterns []*regexp2.Regexp
}

func newDecayPolicy(rate float64, exclude []string) (*decayPolicy, error) {
	p := &decayPolicy{rate: rate}
	for i, expr := range exclude {
		re, err := regexp2.Compile(expr, regexp2.None)
		if err != nil {
			return nil, configErrorf("exclude_from_weight_decay", "pattern #%d %q: %v", i, expr, err)
		}
		re.MatchTimeout = patternMatchTimeout
		p.patterns = append(p.patterns, re)
	}
	return p, nil
}

// uses reports whether a parameter called name is decayed: never when the rate
// is zero, otherwise unless some pattern is found anywhere in the name.
func (p *decayPolicy) uses(name string) (bool, error) {
	if p.rate == 0 {
		return false, nil
	}
	name = variableName(name)
	for _, re := range p.patterns {
		found, err := re.MatchString(name)
		if err != nil {
			return false, usageErrorf("uses_weight_decay", name, "matching %q: %v", re.String(), err)
		}
		if found {
			return false, nil
		}
	}
	return true, nil
}

// variableName strips a trailing output index from name, if any.
func variableName(name string) string {
	stripped, err := outputSuffix.Replace(name, "", -1, 1)
	if err != nil {
		klog.Warningf("optim: cannot normalize parameter name %q: %v", name, err)
		return name
	}
	return stripped
}
