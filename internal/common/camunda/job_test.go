package camunda

import (
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/validation"
)

var userSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"userId"},
	"properties": map[string]interface{}{
		"userId": map[string]interface{}{"type": "string", "minLength": 1},
	},
})

func jobWith(vars string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: "test", Variables: vars}}
}

func TestDecodeVariables(t *testing.T) {
	var dst struct {
		UserID string `json:"userId"`
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, DecodeVariables(jobWith(`{"userId":"u1","extra":true}`), userSchema, &dst))
		assert.Equal(t, "u1", dst.UserID)
	})

	t.Run("schema violation", func(t *testing.T) {
		err := DecodeVariables(jobWith(`{"userId":""}`), userSchema, &dst)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
		assert.Equal(t, 0, apperrors.GetRetryCount(err))
	})

	t.Run("not json", func(t *testing.T) {
		err := DecodeVariables(jobWith(`{`), userSchema, &dst)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
	})

	t.Run("empty variables without schema", func(t *testing.T) {
		require.NoError(t, DecodeVariables(jobWith(""), nil, &dst))
	})
}
