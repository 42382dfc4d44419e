package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/rs/zerolog/log"

	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
	"github.com/hospitalcare/backend/internal/domain/repositories"
	"github.com/hospitalcare/backend/internal/infrastructure/observability"
)

const defaultBatchTimeout = 5 * time.Second

// BatchOptions tunes how concurrent lookups are grouped
type BatchOptions struct {
	// Wait is how long the loader collects keys before querying. Zero uses the loader default.
	Wait time.Duration
	// Capacity caps the number of departments per query. Zero means unbounded.
	Capacity int
	// Timeout bounds each batch query.
	Timeout time.Duration
}

// BatchedDoctorLookup coalesces concurrent department lookups into a single
// ListByDepartments query. Results are never cached between batches so
// workload counts stay current.
type BatchedDoctorLookup struct {
	loader  *dataloader.Loader[entities.DepartmentID, []*entities.Doctor]
	metrics *observability.Metrics
}

var _ providers.DoctorLookup = (*BatchedDoctorLookup)(nil)

// NewBatchedDoctorLookup creates a batched lookup over repo
func NewBatchedDoctorLookup(repo repositories.DoctorRepository, opts BatchOptions, metrics *observability.Metrics) *BatchedDoctorLookup {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultBatchTimeout
	}

	loaderOpts := []dataloader.Option[entities.DepartmentID, []*entities.Doctor]{
		dataloader.WithCache[entities.DepartmentID, []*entities.Doctor](&dataloader.NoCache[entities.DepartmentID, []*entities.Doctor]{}),
	}
	if opts.Wait > 0 {
		loaderOpts = append(loaderOpts, dataloader.WithWait[entities.DepartmentID, []*entities.Doctor](opts.Wait))
	}
	if opts.Capacity > 0 {
		loaderOpts = append(loaderOpts, dataloader.WithBatchCapacity[entities.DepartmentID, []*entities.Doctor](opts.Capacity))
	}

	l := &BatchedDoctorLookup{metrics: metrics}
	l.loader = dataloader.NewBatchedLoader(func(ctx context.Context, keys []entities.DepartmentID) []*dataloader.Result[[]*entities.Doctor] {
		// The batch outlives the cancellation of whichever caller opened it.
		batchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		start := time.Now()
		byDepartment, err := repo.ListByDepartments(batchCtx, keys)
		observability.RecordLookup(batchCtx, metrics, time.Since(start), err != nil)

		results := make([]*dataloader.Result[[]*entities.Doctor], len(keys))
		if err != nil {
			log.Warn().Err(err).Int("departments", len(keys)).Msg("Batched doctor lookup failed")
		}
		for i, key := range keys {
			switch {
			case err != nil:
				results[i] = &dataloader.Result[[]*entities.Doctor]{Error: err}
			default:
				doctors := byDepartment[key]
				if doctors == nil {
					doctors = []*entities.Doctor{}
				}
				results[i] = &dataloader.Result[[]*entities.Doctor]{Data: doctors}
			}
		}
		return results
	}, loaderOpts...)

	return l
}

type lookupResult struct {
	doctors []*entities.Doctor
	err     error
}

// GetDoctorsByDepartment waits for the batch holding departmentID, or for ctx to end
func (l *BatchedDoctorLookup) GetDoctorsByDepartment(ctx context.Context, departmentID entities.DepartmentID) ([]*entities.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("doctors for department %d: %w", departmentID, err)
	}

	thunk := l.loader.Load(ctx, departmentID)
	done := make(chan lookupResult, 1)
	go func() {
		doctors, err := thunk()
		done <- lookupResult{doctors: doctors, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("doctors for department %d: %w", departmentID, res.err)
		}
		return res.doctors, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("doctors for department %d: %w", departmentID, ctx.Err())
	}
}
