// Package pages serves the editable about and contact page content. Stored
// fields override the built-in defaults one top-level field at a time.
package pages

import (
	"context"
	"encoding/json"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
)

type Name string

const (
	About   Name = "about"
	Contact Name = "contact"
)

func (n Name) Valid() bool {
	return n == About || n == Contact
}

// Content is a page blob as stored in the RemoteStore.
type Content = map[string]any

const loadFailedMsg = "فشل في تحميل محتوى الصفحة. يرجى المحاولة لاحقاً."

type Store struct {
	remote repo.RemoteStore
}

func New(remote repo.RemoteStore) *Store {
	return &Store{remote: remote}
}

func path(name Name) string {
	return constant.PagesPath + "/" + string(name)
}

// Defaults returns a fresh copy of the built-in content for name.
func Defaults(name Name) Content {
	var src any
	switch name {
	case About:
		src = DefaultAbout
	case Contact:
		src = DefaultContact
	default:
		return Content{}
	}
	raw, _ := json.Marshal(src)
	out := Content{}
	_ = json.Unmarshal(raw, &out)
	return out
}

// Get returns the stored content over the defaults. On a failed read it
// still returns the defaults, together with the error.
func (s *Store) Get(ctx context.Context, name Name) (Content, error) {
	if !name.Valid() {
		return nil, code.UnknownPage.WithMsg(string(name))
	}
	out := Defaults(name)

	var stored Content
	if err := s.remote.Get(ctx, path(name), nil, &stored); err != nil {
		logger.Errorf(ctx, "get page %s err: %+v", name, err)
		return out, code.LoadFailed.WithMsg(loadFailedMsg)
	}
	for k, v := range stored {
		out[k] = v
	}
	return out, nil
}

func (s *Store) GetAbout(ctx context.Context) (Content, error) {
	return s.Get(ctx, About)
}

func (s *Store) GetContact(ctx context.Context) (Content, error) {
	return s.Get(ctx, Contact)
}

// Save replaces the stored blob for name.
func (s *Store) Save(ctx context.Context, name Name, content Content) error {
	if !name.Valid() {
		return code.UnknownPage.WithMsg(string(name))
	}
	if err := s.remote.Put(ctx, path(name), content); err != nil {
		logger.Errorf(ctx, "save page %s err: %+v", name, err)
		return code.ImportSaveErr.WithMsg("فشل في حفظ محتوى الصفحة")
	}
	return nil
}
