package fallback_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/fallback"
	"ai-tools-backend/internal/models"
	"ai-tools-backend/internal/providers"
	"ai-tools-backend/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func imageRequest(prompt string) *models.GenerationRequest {
	return &models.GenerationRequest{Operation: models.OperationImage, Prompt: prompt, RequesterID: "user-1"}
}

func TestChain_FirstProviderWins(t *testing.T) {
	primary := testutil.ImageProvider("primary")
	secondary := testutil.ImageProvider("secondary")
	store := testutil.NewFakeStore()

	chain := fallback.New("image", []providers.Provider{primary, secondary}, providers.Placeholder{}, store,
		fallback.WithLogger(quietLogger()))
	res, err := chain.Run(context.Background(), imageRequest("fox"))

	require.NoError(t, err)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, models.OutcomeSuccess, res.Attempts[0].Outcome)
	assert.Equal(t, 0, secondary.Calls())
	assert.Equal(t, []byte("png-from-primary"), store.Stored().Data)
}

func TestChain_PrimaryTimesOutSecondarySucceeds(t *testing.T) {
	primary := &testutil.FakeProvider{ProviderName: "primary", Block: true}
	secondary := testutil.ImageProvider("secondary")
	store := testutil.NewFakeStore()

	chain := fallback.New("image", []providers.Provider{primary, secondary}, providers.Placeholder{}, store,
		fallback.WithAttemptTimeout(50*time.Millisecond), fallback.WithLogger(quietLogger()))
	res, err := chain.Run(context.Background(), imageRequest("fox"))

	require.NoError(t, err)
	require.Len(t, res.Attempts, 2)
	assert.Equal(t, "primary", res.Attempts[0].Provider)
	assert.Equal(t, models.OutcomeFailure, res.Attempts[0].Outcome)
	assert.Contains(t, res.Attempts[0].Error, "timed out")
	assert.Equal(t, "secondary", res.Attempts[1].Provider)
	assert.Equal(t, models.OutcomeSuccess, res.Attempts[1].Outcome)

	assert.Equal(t, []byte("png-from-secondary"), store.Stored().Data)
	assert.Equal(t, res.Object.URL, res.URL)
	assert.Equal(t, "secondary", res.Artifact.Stage)
}

func TestChain_AllProvidersFailYieldsPlaceholder(t *testing.T) {
	ps := []providers.Provider{
		testutil.FailingProvider("a", apperr.KindProviderRejected),
		testutil.FailingProvider("b", apperr.KindProviderUnavailable),
		testutil.FailingProvider("c", apperr.KindProviderRejected),
	}
	store := testutil.NewFakeStore()

	chain := fallback.New("image", ps, providers.Placeholder{}, store, fallback.WithLogger(quietLogger()))
	res, err := chain.Run(context.Background(), imageRequest("<b>lighthouse</b>"))

	require.NoError(t, err)
	assert.Len(t, res.Attempts, len(ps)+1)
	for _, a := range res.Attempts[:len(ps)] {
		assert.Equal(t, models.OutcomeFailure, a.Outcome)
		assert.NotEmpty(t, a.Error)
	}
	last := res.Attempts[len(ps)]
	assert.Equal(t, "svg-placeholder", last.Provider)
	assert.Equal(t, models.OutcomeSuccess, last.Outcome)

	stored := store.Stored()
	require.NotNil(t, stored)
	assert.Equal(t, "image/svg+xml", stored.MimeKind)
	assert.Contains(t, string(stored.Data), "&lt;b&gt;lighthouse&lt;/b&gt;")
}

func TestChain_NoProvidersStillTerminates(t *testing.T) {
	store := testutil.NewFakeStore()
	chain := fallback.New("image", nil, providers.Placeholder{}, store, fallback.WithLogger(quietLogger()))

	res, err := chain.Run(context.Background(), imageRequest(strings.Repeat("x", 500)))

	require.NoError(t, err)
	assert.Len(t, res.Attempts, 1)
	assert.NotEmpty(t, res.URL)
}

func TestChain_AttemptsNeverExceedProvidersPlusOne(t *testing.T) {
	for n := 0; n <= 4; n++ {
		ps := make([]providers.Provider, n)
		for i := range ps {
			ps[i] = testutil.FailingProvider("p", apperr.KindProviderRejected)
		}
		chain := fallback.New("image", ps, providers.Placeholder{}, testutil.NewFakeStore(), fallback.WithLogger(quietLogger()))
		res, err := chain.Run(context.Background(), imageRequest("x"))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Attempts), n+1)
		assert.Len(t, chain.Stages(), n+1)
	}
}

func TestChain_StoreFailureIsTerminal(t *testing.T) {
	store := testutil.NewFakeStore()
	store.PutErr = assert.AnError

	chain := fallback.New("image", []providers.Provider{testutil.ImageProvider("primary")}, providers.Placeholder{}, store,
		fallback.WithLogger(quietLogger()))
	res, err := chain.Run(context.Background(), imageRequest("fox"))

	require.Error(t, err)
	assert.Equal(t, apperr.KindStorageUnavailable, apperr.KindOf(err))
	require.NotNil(t, res)
	assert.NotNil(t, res.Artifact)
	assert.Empty(t, res.URL)
}

func TestChain_EffectApplied(t *testing.T) {
	store := testutil.NewFakeStore()
	chain := fallback.New("bg-removal", nil, providers.Passthrough{Effect: providers.EffectBackgroundRemoval}, store,
		fallback.WithLogger(quietLogger()))

	req := &models.GenerationRequest{Operation: models.OperationBgRemoval, Payload: []byte("img"), PayloadMime: "image/png"}
	res, err := chain.Run(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, res.EffectFallback)
	assert.Equal(t, res.Object.URL+"?effect=background_removal", res.URL)
}

func TestChain_EffectRejectedFallsBackToStoredURL(t *testing.T) {
	store := testutil.NewFakeStore()
	store.EffectErr = apperr.New(apperr.KindEffectRejected, "effect not enabled")
	chain := fallback.New("object-removal", nil, providers.Passthrough{Effect: providers.EffectObjectRemoval}, store,
		fallback.WithLogger(quietLogger()))

	req := &models.GenerationRequest{Operation: models.OperationObjectRemoval, ObjectLabel: "car", Payload: []byte("img"), PayloadMime: "image/png"}
	res, err := chain.Run(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, res.EffectFallback)
	assert.Equal(t, res.Object.URL, res.URL)
}
