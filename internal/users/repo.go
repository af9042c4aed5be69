package users

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgerrors "github.com/labelspy/labelspy-backend/pkg/errors"
	"github.com/labelspy/labelspy-backend/pkg/gemini"
)

const usersCollection = "users"

// txMaxAttempts bounds the optimistic retry loop Firestore runs when a
// transaction conflicts with a concurrent write to the same document.
const txMaxAttempts = 5

// Repository is the persistence surface for user records.
type Repository interface {
	CreateOrUpdate(ctx context.Context, user *UserDTO) (*UserDTO, error)
	GetByID(ctx context.Context, uid string) (*UserDTO, error)
	Delete(ctx context.Context, uid string) error
	IncrementIngredientCounts(ctx context.Context, uid string, result *gemini.AnalysisResult) error
	AddScanHistory(ctx context.Context, uid string, result *gemini.AnalysisResult) error
}

type firestoreRepository struct {
	client *firestore.Client
	now    func() time.Time
}

// NewRepository returns a Repository backed by the given Firestore client.
func NewRepository(client *firestore.Client) Repository {
	return &firestoreRepository{
		client: client,
		now:    time.Now,
	}
}

func (r *firestoreRepository) doc(uid string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(uid)
}

// CreateOrUpdate writes the full document and returns the re-read record.
func (r *firestoreRepository) CreateOrUpdate(ctx context.Context, user *UserDTO) (*UserDTO, error) {
	if _, err := r.doc(user.UID).Set(ctx, userToDoc(user)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "write user record")
	}
	return r.GetByID(ctx, user.UID)
}

// GetByID returns the record, or nil without error when it does not exist.
func (r *firestoreRepository) GetByID(ctx context.Context, uid string) (*UserDTO, error) {
	snap, err := r.doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "read user record")
	}
	return docToUser(snap.Data(), uid), nil
}

// Delete removes the record unconditionally; deleting an absent record is
// not an error.
func (r *firestoreRepository) Delete(ctx context.Context, uid string) error {
	if _, err := r.doc(uid).Delete(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "delete user record")
	}
	return nil
}

// IncrementIngredientCounts merges the result's ingredient tallies into the
// stored count map inside a single-document transaction. The document is
// created on first use so a scan can precede the first profile fetch.
func (r *firestoreRepository) IncrementIngredientCounts(ctx context.Context, uid string, result *gemini.AnalysisResult) error {
	ref := r.doc(uid)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		counts := map[string]int64{}
		if snap != nil && snap.Exists() {
			counts = decodeCounts(snap.Data()[fieldCounts])
		}
		applyIngredientCounts(counts, result)

		if snap != nil && snap.Exists() {
			return tx.Update(ref, []firestore.Update{{Path: fieldCounts, Value: counts}})
		}
		return tx.Set(ref, map[string]interface{}{
			fieldUID:    uid,
			fieldCounts: counts,
		}, firestore.MergeAll)
	}, firestore.MaxAttempts(txMaxAttempts))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "update ingredient counts")
	}
	return nil
}

// AddScanHistory appends one entry to the stored history list inside a
// single-document transaction. The whole list is rewritten on every append,
// so write cost grows with accumulated history.
func (r *firestoreRepository) AddScanHistory(ctx context.Context, uid string, result *gemini.AnalysisResult) error {
	ref := r.doc(uid)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		history := []ScanSummary{}
		if snap != nil && snap.Exists() {
			history = decodeHistory(snap.Data()[fieldHistory])
		}
		history = append(history, historyEntryFromResult(result, r.now().UTC()))

		entries := make([]interface{}, 0, len(history))
		for _, entry := range history {
			entries = append(entries, summaryToDoc(entry))
		}

		if snap != nil && snap.Exists() {
			return tx.Update(ref, []firestore.Update{{Path: fieldHistory, Value: entries}})
		}
		return tx.Set(ref, map[string]interface{}{
			fieldUID:     uid,
			fieldHistory: entries,
		}, firestore.MergeAll)
	}, firestore.MaxAttempts(txMaxAttempts))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "append scan history")
	}
	return nil
}
