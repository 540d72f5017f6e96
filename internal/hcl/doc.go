// Package hcl provides the HCL implementation of the config.Loader interface.
// It parses settings files, evaluates attribute expressions against a small
// evaluation context, and translates the decoded blocks into config.Model.
//
// A settings file looks like:
//
//	server {
//	  port              = 8080
//	  cors_origins      = ["http://localhost:5173"]
//	  translate_timeout = "5s"
//	}
//
//	rule "bool_input" {
//	  class    = "input"
//	  types    = ["BOOL"]
//	  keywords = concat(defaults.input_keywords, ["limit"])
//	  patterns = ["^X[0-9]+$"]
//	}
package hcl
