package domain

type Category struct {
	Id            CategoryId
	Name          string
	Slug          string
	AllowedEmails Emails // email domains allowed to read; empty means public
}
