package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
)

func TestValidateProjectName_AcceptsLowercaseAlphanumericWithDashesAndUnderscores(t *testing.T) {
	assert.NoError(t, ValidateProjectName("my-project_1"))
}

func TestValidateProjectName_RejectsUppercase(t *testing.T) {
	err := ValidateProjectName("MyProject")
	assert.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))
}

func TestValidateProjectName_RejectsSpaces(t *testing.T) {
	err := ValidateProjectName("my project")
	assert.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))
}

func TestValidateProjectName_RejectsEmpty(t *testing.T) {
	err := ValidateProjectName("")
	assert.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))
}
