package model

import "strings"

// IsValidEmail performs basic shape validation of an email address
func IsValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") {
		return false
	}
	if strings.ContainsAny(email, " \t\n") {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
