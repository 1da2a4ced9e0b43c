package linerotate

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/kei2100/linerotate/metrics"
)

// RotationStep renames one generation to the next.
type RotationStep struct {
	From string
	To   string
}

func (s RotationStep) String() string {
	return s.From + " > " + s.To
}

// RotationPlan is the ordered list of renames performed by every rotation.
type RotationPlan []RotationStep

// GenerationName returns the file name of generation gen of base.
// Generation 0 is base itself.
func GenerationName(base string, gen int) string {
	if gen == 0 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, gen)
}

// NewRotationPlan returns the renames shifting every generation of base up by
// one, highest generation first.
//
//	e.g. base "output", maxOutputFiles 4
//	- output.2 > output.3 | output.1 > output.2 | output > output.1
//
// The previous output.3 is overwritten by the first step. With
// maxOutputFiles <= 1 the plan is empty and rotation only truncates.
func NewRotationPlan(base string, maxOutputFiles int) RotationPlan {
	if maxOutputFiles <= 1 {
		return RotationPlan{}
	}
	plan := make(RotationPlan, 0, maxOutputFiles-1)
	for gen := maxOutputFiles - 2; gen >= 0; gen-- {
		plan = append(plan, RotationStep{
			From: GenerationName(base, gen),
			To:   GenerationName(base, gen+1),
		})
	}
	return plan
}

// Apply performs the renames in order on fs. A failed step does not stop the
// ones after it; its error is stored at the step's index in the result.
// The result is nil when every step succeeded.
func (p RotationPlan) Apply(fs afero.Fs) []error {
	var errs []error
	for i, step := range p {
		err := fs.Rename(step.From, step.To)
		if err == nil {
			log.WithField("step", step).Debug("rename success")
			continue
		}
		metrics.RenameFailuresTotal.Inc()
		fields := log.Fields{"step": step, "err": err}
		if os.IsNotExist(err) {
			log.WithFields(fields).Debug("rename skipped, no such generation")
		} else {
			log.WithFields(fields).Warn("rename failed")
		}
		if errs == nil {
			errs = make([]error, len(p))
		}
		errs[i] = err
	}
	return errs
}
