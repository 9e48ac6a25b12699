package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassSet(t *testing.T) {
	tests := []struct {
		family   ModelFamily
		idx      int
		expected string
	}{
		{ModelFamilyCOCO, 16, "cat"},
		{ModelFamilyTF, 17, "cat"},
		{ModelFamilyTF, 90, "toothbrush"},
		{ModelFamilyTF, 12, "class_12"},
		{"", 1, "person"},
		{ModelFamilyVOC, 8, "cat"},
		{ModelFamilyVOC, 99, "class_99"},
	}

	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			set, err := ClassSet(tt.family)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, set.Name(tt.idx))
		})
	}

	_, err := ClassSet("imagenet")
	assert.Error(t, err)
}

func TestOutputClassSet_Entity(t *testing.T) {
	tests := []struct {
		set    *OutputClassSet
		idx    int
		entity string
		name   string
	}{
		{TFCOCOClasses, 17, "Cat", "cat"},
		{TFCOCOClasses, 10, "Traffic light", "traffic light"},
		{TFCOCOClasses, 12, "class_12", "class_12"},
		{COCOClasses, 0, "__background__", "__background__"},
		{PascalVOCClasses, 15, "Person", "person"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.entity, tt.set.Entity(tt.idx))
			assert.Equal(t, tt.name, tt.set.Name(tt.idx))
		})
	}
}

func TestClassSet_Len(t *testing.T) {
	assert.Equal(t, 81, COCOClasses.Len())
	assert.Equal(t, 80, TFCOCOClasses.Len())
	assert.Equal(t, 21, PascalVOCClasses.Len())
}
