// Package catalog defines the region catalog: the static description of where
// each answer-option box lives on a sheet and which option is the correct
// answer for each question.
//
// A catalog is produced by the external layout service (see the layout
// package) or loaded from a JSON file, and is consumed read-only by the
// grading engine. Geometry is expressed in percentages of image width/height
// (0-100), never pixels, so one catalog serves any resolution of the same
// layout.
//
// # Wire Shape
//
// The JSON shape exchanged with the layout service and stored on disk:
//
//	{
//	  "boxes": [
//	    {"id": "q1a", "questionNumber": 1, "optionLabel": "A",
//	     "x": 10.0, "y": 20.0, "w": 4.5, "h": 3.0}
//	  ],
//	  "correctAnswers": {"1": "A"}
//	}
//
// # Validation
//
// Parse and Load fail fast on a malformed catalog: missing or non-positive
// geometry, labels outside the option alphabet, duplicate labels within a
// question, duplicate region ids, or a correct-answer entry that names a
// question or label the boxes do not contain. A corrupt catalog would
// silently mis-score every sheet graded against it, so it is rejected before
// any grading begins.
//
// # Thread Safety
//
// A Catalog is immutable once parsed. Sharing one catalog across concurrent
// sheet evaluations is safe as long as no caller mutates it mid-batch.
package catalog
