package ports

import "github.com/1A7432/wcf-onebot/internal/domain"

// ReportStore persists a finished run.
type ReportStore interface {
	SaveRun(run domain.ProbeRun) (id string, err error)
}
