package bindings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/cache"
	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/mapper"
	"github.com/mterrades/go-refuge-sync/internal/remote"
)

// Doubts exposes the doubt board bindings of one refuge: a list query plus
// create/delete for doubts and answers. All writes patch the single
// doubts/refuge/<id> slot; answers live embedded in their doubt.
type Doubts struct {
	store  *cache.Store
	client *remote.Client
	log    zerolog.Logger
}

// NewDoubts wires the doubt bindings to a store and remote client.
func NewDoubts(store *cache.Store, client *remote.Client, log zerolog.Logger) *Doubts {
	return &Doubts{store: store, client: client, log: log}
}

// ListQuery binds the doubt list of a refuge. refugeID is re-resolved on
// every use; an empty value disables the query until navigation settles.
func (d *Doubts) ListQuery(refugeID func() string) *Query[[]domain.Doubt] {
	return &Query[[]domain.Doubt]{
		Store: d.store,
		KeyFn: func() (cache.Key, bool) {
			id := refugeID()
			if id == "" {
				return nil, false
			}
			return DoubtsKey(id), true
		},
		FetchFn: func(ctx context.Context) ([]domain.Doubt, error) {
			recs, err := d.client.ListDoubts(ctx, refugeID())
			if err != nil {
				return nil, err
			}
			return mapper.Doubts(recs), nil
		},
		Log: d.log,
	}
}

// CreateDoubtInput parameterizes doubt creation.
type CreateDoubtInput struct {
	RefugeID string
	Message  string
}

// CreateDoubt posts a doubt and prepends the stored entity to the refuge's
// list slot. If the list was never fetched the prepend is a no-op and the
// doubt appears on the first real fetch instead.
func (d *Doubts) CreateDoubt() *Mutation[CreateDoubtInput, domain.Doubt] {
	return &Mutation[CreateDoubtInput, domain.Doubt]{
		Store: d.store,
		RunFn: func(ctx context.Context, in CreateDoubtInput) (domain.Doubt, error) {
			rec, err := d.client.CreateDoubt(ctx, in.RefugeID, in.Message)
			if err != nil {
				return domain.Doubt{}, err
			}
			return mapper.Doubt(rec), nil
		},
		PatchFn: func(in CreateDoubtInput, out domain.Doubt) []cache.Patch {
			return []cache.Patch{
				{Op: cache.OpPrepend, Key: DoubtsKey(in.RefugeID), Entity: out},
			}
		},
		Log: d.log,
	}
}

// DeleteDoubtInput parameterizes doubt deletion.
type DeleteDoubtInput struct {
	RefugeID string
	DoubtID  string
}

// DeleteDoubt removes a doubt owned by the caller and drops it from the list
// slot, embedded answers and all.
func (d *Doubts) DeleteDoubt() *Mutation[DeleteDoubtInput, struct{}] {
	return &Mutation[DeleteDoubtInput, struct{}]{
		Store: d.store,
		RunFn: func(ctx context.Context, in DeleteDoubtInput) (struct{}, error) {
			return struct{}{}, d.client.DeleteDoubt(ctx, in.DoubtID)
		},
		PatchFn: func(in DeleteDoubtInput, _ struct{}) []cache.Patch {
			return []cache.Patch{
				{Op: cache.OpRemove, Key: DoubtsKey(in.RefugeID), ID: in.DoubtID},
			}
		},
		Log: d.log,
	}
}

// CreateAnswerInput parameterizes answering a doubt. ParentAnswerID is nil
// for a top-level answer and set for a reply.
type CreateAnswerInput struct {
	RefugeID       string
	DoubtID        string
	Message        string
	ParentAnswerID *string
}

// CreateAnswer posts an answer and rewrites the parent doubt in place,
// appending the answer and bumping the counter in one atomic step.
func (d *Doubts) CreateAnswer() *Mutation[CreateAnswerInput, domain.Answer] {
	return &Mutation[CreateAnswerInput, domain.Answer]{
		Store: d.store,
		RunFn: func(ctx context.Context, in CreateAnswerInput) (domain.Answer, error) {
			rec, err := d.client.CreateAnswer(ctx, in.DoubtID, in.Message, in.ParentAnswerID)
			if err != nil {
				return domain.Answer{}, err
			}
			return mapper.Answer(rec), nil
		},
		PatchFn: func(in CreateAnswerInput, out domain.Answer) []cache.Patch {
			return []cache.Patch{
				{
					Op:      cache.OpUpdateEntity,
					Key:     DoubtsKey(in.RefugeID),
					ID:      in.DoubtID,
					Updater: addAnswer{Answer: out},
				},
			}
		},
		Log: d.log,
	}
}

// DeleteAnswerInput parameterizes answer deletion.
type DeleteAnswerInput struct {
	RefugeID string
	DoubtID  string
	AnswerID string
}

// DeleteAnswer removes an answer and rewrites the parent doubt, dropping the
// answer and decrementing the counter in the same step so the two never
// drift apart.
func (d *Doubts) DeleteAnswer() *Mutation[DeleteAnswerInput, struct{}] {
	return &Mutation[DeleteAnswerInput, struct{}]{
		Store: d.store,
		RunFn: func(ctx context.Context, in DeleteAnswerInput) (struct{}, error) {
			return struct{}{}, d.client.DeleteAnswer(ctx, in.DoubtID, in.AnswerID)
		},
		PatchFn: func(in DeleteAnswerInput, _ struct{}) []cache.Patch {
			return []cache.Patch{
				{
					Op:      cache.OpUpdateEntity,
					Key:     DoubtsKey(in.RefugeID),
					ID:      in.DoubtID,
					Updater: removeAnswer{AnswerID: in.AnswerID},
				},
			}
		},
		Log: d.log,
	}
}

// addAnswer appends one answer to a doubt and reconciles AnswersCount from
// the resulting collection. Re-applying with the same answer ID changes
// nothing.
type addAnswer struct {
	Answer domain.Answer
}

func (u addAnswer) UpdateEntity(old cache.Entity) (cache.Entity, bool) {
	doubt, ok := old.(domain.Doubt)
	if !ok {
		return old, false
	}
	for _, a := range doubt.Answers {
		if a.ID == u.Answer.ID {
			return old, false
		}
	}
	answers := make([]domain.Answer, 0, len(doubt.Answers)+1)
	answers = append(answers, doubt.Answers...)
	answers = append(answers, u.Answer)
	doubt.Answers = answers
	doubt.AnswersCount = len(answers)
	return doubt, true
}

// removeAnswer drops one answer from a doubt, counter reconciled the same
// way. A missing answer ID changes nothing.
type removeAnswer struct {
	AnswerID string
}

func (u removeAnswer) UpdateEntity(old cache.Entity) (cache.Entity, bool) {
	doubt, ok := old.(domain.Doubt)
	if !ok {
		return old, false
	}
	answers := make([]domain.Answer, 0, len(doubt.Answers))
	for _, a := range doubt.Answers {
		if a.ID != u.AnswerID {
			answers = append(answers, a)
		}
	}
	if len(answers) == len(doubt.Answers) {
		return old, false
	}
	doubt.Answers = answers
	doubt.AnswersCount = len(answers)
	return doubt, true
}
