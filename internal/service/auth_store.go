package service

import (
	"context"

	"github.com/fayiz2005/Kaze/internal/repository"
)

// AuthRepos: репозитории, доступные внутри транзакции AuthTx.
type AuthRepos struct {
	Users   UserRepo
	Invites InviteRepo
	Resets  PasswordResetRepo
}

// AuthTx: любая ошибка fn откатывает и погашение кода, и запись пользователя.
type AuthTx interface {
	InTx(ctx context.Context, fn func(r AuthRepos) error) error
}

type repoAuthTx struct {
	repo *repository.Repository
}

func NewAuthTx(repo *repository.Repository) AuthTx {
	return &repoAuthTx{repo: repo}
}

func (t *repoAuthTx) InTx(ctx context.Context, fn func(r AuthRepos) error) error {
	return t.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return fn(AuthRepos{Users: tx.Users, Invites: tx.Invites, Resets: tx.PasswordReset})
	})
}
