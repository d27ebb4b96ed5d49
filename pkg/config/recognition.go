package config

import (
	"image"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/blob"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/recognition"
)

func (b BlobConfig) params(r blob.ColorRange) blob.DetectionParams {
	return blob.DetectionParams{
		Range:       r,
		MinArea:     b.MinArea,
		MaxArea:     b.MaxArea,
		MaxRatio:    b.MaxRatio,
		UseClose:    b.UseClose,
		RadiusClose: b.RadiusClose,
		UseOpen:     b.UseOpen,
		RadiusOpen:  b.RadiusOpen,
	}
}

// Recognizer settings of the [recognition] section, call Validate first
func (cfg *ConfigFile) RecognitionOptions() (recognition.Options, error) {
	rc := cfg.Recognition
	method, err := recognition.ParseMethod(rc.Method)
	if err != nil {
		return recognition.Options{}, err
	}

	opts := recognition.Options{
		Method:     method,
		Scene:      blob.FlatScene{Scale: rc.CmPerPixel},
		BorderSize: rc.BorderSize,
		Contour: recognition.ContourOptions{
			Brightness:          rc.Contour.Brightness,
			IgnoreWithoutMarker: rc.Contour.IgnoreWithoutMarker,
			AutoWB:              rc.Contour.AutoWB,
			HeadSize:            rc.Contour.HeadSize,
			Quadrangles:         rc.Contour.Quadrangles,
		},
		Code: blob.CodeOptions{
			Dictionary:          rc.Code.Dictionary,
			Params:              rc.Code.Params,
			IgnoreWithoutMarker: rc.Code.IgnoreWithoutMarker,
		},
	}

	if method == recognition.Color {
		r, err := rc.Color.Range.ColorRange()
		if err != nil {
			return recognition.Options{}, err
		}
		opts.Color = rc.Color.Blob.params(r)
	}

	mc := rc.MultiColor
	ranges := make([]blob.ColorRange, 0, len(mc.Ranges))
	for _, rcfg := range mc.Ranges {
		r, err := rcfg.ColorRange()
		if err != nil {
			return recognition.Options{}, err
		}
		ranges = append(ranges, r)
	}
	opts.MultiColor = recognition.MultiColorOptions{
		Ranges:                ranges,
		Current:               mc.Current,
		MinArea:               mc.Blob.MinArea,
		MaxArea:               mc.Blob.MaxArea,
		MaxRatio:              mc.Blob.MaxRatio,
		UseClose:              mc.Blob.UseClose,
		RadiusClose:           mc.Blob.RadiusClose,
		UseOpen:               mc.Blob.UseOpen,
		RadiusOpen:            mc.Blob.RadiusOpen,
		UseDot:                mc.UseDot,
		DotSize:               mc.DotSize,
		RestrictPosition:      mc.RestrictPosition,
		UseCode:               mc.UseCode,
		IgnoreWithoutMarker:   mc.IgnoreWithoutMarker,
		AutoCorrect:           mc.AutoCorrect,
		AutoCorrectOnlyExport: mc.AutoCorrectOnlyExport,
	}
	return opts, nil
}

// Region of a cols x rows frame to search, the whole frame when unset
func (r RectConfig) Rect(cols, rows int) image.Rectangle {
	if r.W <= 0 || r.H <= 0 {
		return image.Rect(0, 0, cols, rows)
	}
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}
