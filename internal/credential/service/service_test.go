package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexara/internal/anchor"
	"lexara/internal/credential/models"
	"lexara/internal/credential/store"
	"lexara/internal/evidence"
	repmodels "lexara/internal/reputation/models"
	repservice "lexara/internal/reputation/service"
	repstore "lexara/internal/reputation/store"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

type fixture struct {
	svc      *Service
	creds    *store.InMemoryStore
	events   *repstore.InMemoryStore
	anchorer *anchor.Fake
	evidence evidence.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	creds := store.NewInMemoryStore()
	events := repstore.NewInMemoryStore()
	fake := anchor.NewFake()
	ev := evidence.NewInMemoryStore()
	appender := repservice.New(events, fake)
	return &fixture{
		svc:      New(creds, ev, fake, appender),
		creds:    creds,
		events:   events,
		anchorer: fake,
		evidence: ev,
	}
}

func pdfScan() evidence.File {
	return evidence.File{
		Name:        "license.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4 scanned license"),
	}
}

func validSubmission(user domain.UserID) models.SubmitInput {
	return models.SubmitInput{
		UserID:           user,
		CredentialType:   models.TypeBarLicense,
		IssuingAuthority: "State Bar of California",
		CredentialName:   "Attorney License",
		Jurisdiction:     "CA",
	}
}

func TestSubmitCreatesPendingCredential(t *testing.T) {
	f := newFixture(t)
	user := domain.NewUserID()

	id, err := f.svc.Submit(context.Background(), validSubmission(user), pdfScan())
	require.NoError(t, err)

	cred, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, cred.Status)
	assert.NotEmpty(t, cred.EvidenceCID)
	assert.Empty(t, cred.AnchorTxID, "submission is not anchored")
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)

	in := validSubmission(domain.NewUserID())
	in.CredentialName = ""
	_, err := f.svc.Submit(context.Background(), in, pdfScan())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestSubmitCancelledLeavesNoRecord(t *testing.T) {
	f := newFixture(t)
	user := domain.NewUserID()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Submit(ctx, validSubmission(user), pdfScan())
	require.Error(t, err)

	listed, err := f.svc.ListByUser(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, listed, "cancelled submission is all-or-nothing")
}

func TestVerifyEndToEnd(t *testing.T) {
	f := newFixture(t)
	user := domain.NewUserID()
	verifier := domain.NewUserID()
	ctx := context.Background()

	id, err := f.svc.Submit(ctx, validSubmission(user), pdfScan())
	require.NoError(t, err)

	require.NoError(t, f.svc.Verify(ctx, id, verifier))

	cred, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, cred.Status)
	assert.NotEmpty(t, cred.AnchorTxID)
	assert.Equal(t, verifier, cred.VerifierID)

	events, err := f.events.ListByUser(ctx, user, repmodels.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, repmodels.EventCredentialVerified, events[0].Type)
	assert.InDelta(t, 2.0, events[0].ScoreChange, 1e-9)
}

func TestVerifyTwiceIsStateConflict(t *testing.T) {
	f := newFixture(t)
	user := domain.NewUserID()
	ctx := context.Background()

	id, err := f.svc.Submit(ctx, validSubmission(user), pdfScan())
	require.NoError(t, err)
	require.NoError(t, f.svc.Verify(ctx, id, domain.NewUserID()))

	err = f.svc.Verify(ctx, id, domain.NewUserID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeStateConflict))
}

// gateAnchor holds credential verifications at the anchor boundary so a test
// can line up concurrent callers past the status check.
type gateAnchor struct {
	inner   *anchor.Fake
	entered chan struct{}
	release chan struct{}
}

func (g *gateAnchor) Submit(ctx context.Context, sub anchor.Submission) (string, error) {
	if sub.Label == "credential_verification" {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.inner.Submit(ctx, sub)
}

func TestConcurrentVerifySingleWinner(t *testing.T) {
	creds := store.NewInMemoryStore()
	events := repstore.NewInMemoryStore()
	fake := anchor.NewFake()
	gate := &gateAnchor{inner: fake, entered: make(chan struct{}), release: make(chan struct{})}
	svc := New(creds, evidence.NewInMemoryStore(), gate, repservice.New(events, fake))

	user := domain.NewUserID()
	ctx := context.Background()
	id, err := svc.Submit(ctx, validSubmission(user), pdfScan())
	require.NoError(t, err)

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			errs <- svc.Verify(ctx, id, domain.NewUserID())
		}()
	}

	// Both verifiers have passed the pending check; let them race the write.
	<-gate.entered
	<-gate.entered
	close(gate.release)

	var wins, conflicts int
	for range 2 {
		switch err := <-errs; {
		case err == nil:
			wins++
		case dErrors.HasCode(err, dErrors.CodeStateConflict):
			conflicts++
		default:
			t.Fatalf("unexpected verify error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one verification lands")
	assert.Equal(t, 1, conflicts, "the loser reports a state conflict")

	cred, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, cred.Status)

	listed, err := events.ListByUser(ctx, user, repmodels.Filter{})
	require.NoError(t, err)
	require.Len(t, listed, 1, "the owner is credited once")
	assert.Equal(t, repmodels.EventCredentialVerified, listed[0].Type)
}

func TestRejectAfterVerifyIsStateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Submit(ctx, validSubmission(domain.NewUserID()), pdfScan())
	require.NoError(t, err)
	require.NoError(t, f.svc.Verify(ctx, id, domain.NewUserID()))

	err = f.svc.Reject(ctx, id, "insufficient evidence")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeStateConflict))
}

func TestRejectPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Submit(ctx, validSubmission(domain.NewUserID()), pdfScan())
	require.NoError(t, err)
	require.NoError(t, f.svc.Reject(ctx, id, "forged document"))

	cred, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, cred.Status)
	assert.Equal(t, "forged document", cred.RejectionReason)

	// Rejected is terminal.
	err = f.svc.Verify(ctx, id, domain.NewUserID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeStateConflict))
}

func TestRevokeRequiresVerified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Submit(ctx, validSubmission(domain.NewUserID()), pdfScan())
	require.NoError(t, err)

	err = f.svc.Revoke(ctx, id, "disbarred")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeStateConflict))

	require.NoError(t, f.svc.Verify(ctx, id, domain.NewUserID()))
	require.NoError(t, f.svc.Revoke(ctx, id, "disbarred"))

	cred, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevoked, cred.Status)
}

func TestVerifyAnchorFailureKeepsPending(t *testing.T) {
	f := newFixture(t)
	user := domain.NewUserID()
	ctx := context.Background()

	id, err := f.svc.Submit(ctx, validSubmission(user), pdfScan())
	require.NoError(t, err)

	f.anchorer.FailWith(anchor.ErrUnavailable)
	err = f.svc.Verify(ctx, id, domain.NewUserID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAnchorUnavailable))

	cred, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, cred.Status, "failed anchoring leaves the state machine untouched")
}

func TestCheckExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	in := validSubmission(domain.NewUserID())
	in.ExpiryDate = &expiry

	id, err := f.svc.Submit(ctx, in, pdfScan())
	require.NoError(t, err)

	// Pending credentials never expire.
	require.NoError(t, f.svc.CheckExpiry(ctx, id, expiry.Add(time.Hour)))
	cred, _ := f.svc.Get(ctx, id)
	assert.Equal(t, models.StatusPending, cred.Status)

	require.NoError(t, f.svc.Verify(ctx, id, domain.NewUserID()))

	// Not yet past the expiry date.
	require.NoError(t, f.svc.CheckExpiry(ctx, id, expiry))
	cred, _ = f.svc.Get(ctx, id)
	assert.Equal(t, models.StatusVerified, cred.Status)

	require.NoError(t, f.svc.CheckExpiry(ctx, id, expiry.Add(time.Hour)))
	cred, _ = f.svc.Get(ctx, id)
	assert.Equal(t, models.StatusExpired, cred.Status)

	// Idempotent on repeat.
	require.NoError(t, f.svc.CheckExpiry(ctx, id, expiry.Add(2*time.Hour)))
	cred, _ = f.svc.Get(ctx, id)
	assert.Equal(t, models.StatusExpired, cred.Status)
}

func TestGetUnknownCredential(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), models.NewCredentialID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
