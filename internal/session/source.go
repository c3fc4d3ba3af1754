package session

import (
	"context"
	"errors"
	"time"

	"github.com/Balram-8696/examprephub/internal/exam"
)

var ErrTestNotAvailable = errors.New("test not open for attempts")

// StoreSource adapts an exam.Store to the engine's TestSource contract.
// Only published tests inside their publish/expiry window are attemptable;
// the full definition (answer keys included) is loaded because the engine
// grades locally at submission time.
type StoreSource struct {
	Store exam.Store
}

func (s StoreSource) FetchTest(ctx context.Context, testID string) (exam.Test, error) {
	t, err := s.Store.GetTestWithKeys(ctx, testID)
	if err != nil {
		return exam.Test{}, err
	}
	now := time.Now().Unix()
	if t.Status != exam.StatusPublished ||
		(t.PublishAt != 0 && now < t.PublishAt) ||
		(t.ExpireAt != 0 && now > t.ExpireAt) {
		return exam.Test{}, ErrTestNotAvailable
	}
	return t, nil
}
