// Package validation checks the flat string input of inspection API requests.
//
// # Basic Usage
//
//	v := validation.Make(map[string]string{
//	    "state":   "pending",
//	    "timeout": "2s",
//	}, validation.Rules{
//	    "state":   "sometimes|in:idle,pending,resolved,failed",
//	    "timeout": "sometimes|duration|max_duration:1m",
//	})
//
//	if v.Fails() {
//	    // v.Errors() returns *Errors with Bag map[string][]string
//	    // JSON: {"errors": {"field": ["message1", "message2"]}}
//	}
//
// # Available Rules
//
//   - required           field must be present and non-empty
//   - sometimes          skip the remaining rules when the field is absent
//   - integer            must parse as an int
//   - gte:n, lte:n       numeric bounds
//   - in:a,b,c           value must be one of the list
//   - duration           a positive time.ParseDuration value
//   - max_duration:d     duration no longer than d
//   - min_duration:d     duration no shorter than d
//
// Rules run left to right and stop at the first failure of a field. Unknown
// rule names panic in Make.
package validation
