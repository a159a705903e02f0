package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"missing field", errors.ErrCodeMissingTargetField, "panel field is empty"},
		{"invalid param", errors.CodeInvalidParam, "mandate must be one of must, mustNot, either"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_UnwrapReturnsCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("original")
	ae := errors.Wrap(cause, errors.ErrCodeCacheError, "lrange failed")

	assert.Equal(t, cause, stderrors.Unwrap(ae))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeMissingTimeRange, "no time filter")
	outer := errors.Wrap(inner, errors.CodeUnknown, "compose")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeMissingTimeRange, outer.Code)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeMissingTimeRange, "no time filter")
	outer := errors.Wrap(inner, errors.CodeInternal, "unexpected state")

	assert.Equal(t, errors.CodeInternal, outer.Code)
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeMissingTargetField, "panel field is not configured")
	assert.Equal(t, "[PANEL_002] panel field is not configured", ae.Error())

	withDetail := ae.WithDetail("panel=map")
	assert.Equal(t, "[PANEL_002] panel field is not configured: panel=map", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")

	wrapped := errors.Transport(stderrors.New("connection refused"), "http://solr:8983")
	assert.Equal(t, "[PANEL_004] query transport failed: http://solr:8983: connection refused", wrapped.Error())
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()
	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestSentinels_MatchWithErrorsIs(t *testing.T) {
	t.Parallel()

	err := errors.ErrMissingTimeRange.WithDetail("filter set is empty")
	assert.True(t, stderrors.Is(err, errors.ErrMissingTimeRange))
	assert.False(t, stderrors.Is(err, errors.ErrMissingTargetField))

	fmtWrapped := fmt.Errorf("cycle: %w", errors.ErrMalformedFacetPayload)
	assert.True(t, stderrors.Is(fmtWrapped, errors.ErrMalformedFacetPayload))
}

func TestTransport_PassesCauseThrough(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("i/o timeout")
	err := errors.Transport(cause, "select")

	assert.True(t, errors.IsCode(err, errors.ErrCodeTransport))
	assert.True(t, stderrors.Is(err, cause))
	assert.Nil(t, errors.Transport(nil, "select"))
}

func TestIsCode_TraversesChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeMalformedFacetPayload, "odd length")
	outer := fmt.Errorf("aggregate: %w", inner)

	assert.True(t, errors.IsCode(outer, errors.ErrCodeMalformedFacetPayload))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeTransport))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeTransport))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeNoIndices, errors.GetCode(fmt.Errorf("wrap: %w", errors.ErrNoIndices)))
}

//Personal.AI order the ending
