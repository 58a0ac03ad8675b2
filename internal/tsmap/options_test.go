package tsmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/skywatch-data/significance.report/internal/units"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    Selection
		wantErr bool
	}{
		{"none", nil, 0, false},
		{"ul only", []string{"ul"}, SelectUL, false},
		{"errn-errp only", []string{"errn-errp"}, SelectErrnErrp, false},
		{"both explicit", []string{"ul", "errn-errp"}, SelectUL | SelectErrnErrp, false},
		{"all", []string{"all"}, SelectUL | SelectErrnErrp, false},
		{"unknown", []string{"sqrt-ts"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfig)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	base := DefaultOptions()

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults pass", func(*Options) {}, false},
		{"downsampling 2", func(o *Options) { o.DownsamplingFactor = 2 }, false},
		{"downsampling 8", func(o *Options) { o.DownsamplingFactor = 8 }, false},
		{"downsampling 3", func(o *Options) { o.DownsamplingFactor = 3 }, true},
		{"downsampling 16", func(o *Options) { o.DownsamplingFactor = 16 }, true},
		{"zero kernel width", func(o *Options) { o.KernelWidthDeg = 0 }, true},
		{"negative rtol", func(o *Options) { o.RTol = -1 }, true},
		{"bad selection", func(o *Options) { o.Selection = []string{"bogus"} }, true},
		{"flux unit m-2 s-1", func(o *Options) { o.FluxUnit = units.FluxM2S }, false},
		{"empty flux unit", func(o *Options) { o.FluxUnit = "" }, false},
		{"exposure tag as flux unit", func(o *Options) { o.FluxUnit = units.ExposureCM2S }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.mutate(&opts)
			err := opts.validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultOptionsStable(t *testing.T) {
	want := Options{
		KernelWidthDeg: 0.2,
		NSigma:         1,
		NSigmaUL:       2,
		RTol:           0.01,
		Selection:      []string{"all"},
		FluxUnit:       units.FluxCM2S,
	}
	if diff := cmp.Diff(want, DefaultOptions()); diff != "" {
		t.Errorf("DefaultOptions mismatch (-want +got):\n%s", diff)
	}
}
