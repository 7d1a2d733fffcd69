package validator

import (
	"testing"

	"horizonx-machine/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	v := New()

	assert.Nil(t, v.Validate(&domain.TrackProcessRequest{PID: 12}))

	errs := v.Validate(&domain.TrackProcessRequest{})
	assert.Equal(t, "The PID field is required.", errs["pid"])

	errs = v.Validate(&domain.TrackProcessRequest{PID: -4})
	assert.Equal(t, "The PID must be greater than 0.", errs["pid"])

	errs = v.Validate(&domain.LoginRequest{Password: "short"})
	assert.Equal(t, "The Password must be at least 8 characters.", errs["password"])
}
