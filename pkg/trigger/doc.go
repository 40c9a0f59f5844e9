// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package trigger models alerting triggers and the documents that store them.
//
// Normalizer prepares a trigger for the alerting API. Legacy expressions of
// the form "STATE if CONDITION else STATE" are converted to the ternary
// syntax and a deprecation warning is logged:
//
//	doc, err := trigger.Load("disk.trigger.yaml")
//	if err != nil {
//	    return err
//	}
//	n := &trigger.Normalizer{Checker: expression.NewChecker()}
//	for _, t := range doc.Triggers {
//	    if _, err := n.Normalize(t); err != nil {
//	        return err
//	    }
//	}
//	return trigger.Save(doc)
//
// Save writes back only the expressions of decoded triggers; every other key
// in the file is left as it was.
package trigger
