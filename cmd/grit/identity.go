package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/odvcencio/grit/pkg/repo"
)

const defaultIdentity = "grit <grit@localhost>"

// resolveIdentity picks an identity from the flag value, then the
// GIT_<role>_NAME / GIT_<role>_EMAIL environment, then a fixed default.
func resolveIdentity(flagValue, role string, now time.Time) (repo.Signature, error) {
	ident := strings.TrimSpace(flagValue)
	if ident == "" {
		name := os.Getenv("GIT_" + role + "_NAME")
		email := os.Getenv("GIT_" + role + "_EMAIL")
		if name != "" {
			ident = fmt.Sprintf("%s <%s>", name, email)
		} else {
			ident = defaultIdentity
		}
	}
	sig, err := parseIdentity(ident)
	if err != nil {
		return repo.Signature{}, err
	}
	sig.When = now
	return sig, nil
}

// parseIdentity splits "Name <email>".
func parseIdentity(s string) (repo.Signature, error) {
	lt := strings.IndexByte(s, '<')
	gt := strings.LastIndexByte(s, '>')
	if lt < 0 || gt < lt {
		return repo.Signature{}, fmt.Errorf("identity %q: want \"Name <email>\"", s)
	}
	name := strings.TrimSpace(s[:lt])
	if name == "" {
		return repo.Signature{}, fmt.Errorf("identity %q: name is empty", s)
	}
	email := strings.TrimSpace(s[lt+1 : gt])
	if strings.ContainsAny(name+email, "<>\n") {
		return repo.Signature{}, fmt.Errorf("identity %q: invalid characters", s)
	}
	return repo.Signature{Name: name, Email: email}, nil
}
