package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Ref   struct {
		ID string `json:"id" validate:"required"`
	} `json:"ref"`
}

func TestDecodeJSONBodyStrictness(t *testing.T) {
	body := `{"email":"u@x.com","ref":{"id":"pi_1","amount":1999}}`

	var strict sample
	err := DecodeJSONBody(httptest.NewRequest("POST", "/", strings.NewReader(body)), &strict)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	var loose sample
	err = DecodeJSONBodyAllowUnknown(httptest.NewRequest("POST", "/", strings.NewReader(body)), &loose)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", loose.Ref.ID)
}

func TestDecodeJSONBodyValidationDetails(t *testing.T) {
	var dest sample
	err := DecodeJSONBodyAllowUnknown(httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope"}`)), &dest)
	require.Error(t, err)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email", details["sample.email"])
	assert.Equal(t, "is required", details["sample.ref.id"])
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, bad := range []string{"", "abc.def", "Bearer ", "Basic abc"} {
		_, err := BearerToken(bad)
		assert.ErrorIs(t, err, ErrMissingBearer, bad)
	}
}

func TestRequireQueryEmail(t *testing.T) {
	email, err := RequireQueryEmail(httptest.NewRequest("GET", "/carts?email=U@x.com", nil), "email")
	require.NoError(t, err)
	assert.Equal(t, "u@x.com", email)

	_, err = RequireQueryEmail(httptest.NewRequest("GET", "/carts", nil), "email")
	require.Error(t, err)
}
