package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/OleoMar/alphawave/internal/client/models"
)

func (a *App) SignUp(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	fullName, err := GetSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	phone, err := GetSimpleText(a.reader, "Enter phone (optional)", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	password, err := GetPassword("Enter password", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	confirm, err := GetPassword("Confirm password", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	err = a.identity.Register(ctx, models.RegisterInput{
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
		FullName:        fullName,
		Phone:           phone,
	})
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	fmt.Println("Account created, you are signed in.")
}

func (a *App) SignIn(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	password, err := GetPassword("Enter password", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	if err := a.identity.Login(ctx, email, password); err != nil {
		fmt.Println(err.Error())
		return
	}

	fmt.Println("Signed in.")
}

func (a *App) SignOut(ctx context.Context) {
	if err := a.identity.Logout(ctx); err != nil {
		fmt.Println(err.Error())
		return
	}
	fmt.Println("Signed out.")
}

func (a *App) WhoAmI(ctx context.Context) {
	session, err := a.identity.CurrentSession(ctx)
	if err != nil {
		fmt.Println("Not signed in.")
		return
	}

	fmt.Printf("Email:     %s\n", session.Email)
	fmt.Printf("Name:      %s\n", session.FullName)
	if session.Phone != "" {
		fmt.Printf("Phone:     %s\n", session.Phone)
	}
	fmt.Printf("Member of: AlphaWave since %s\n", session.CreatedAt.Format("2006-01-02"))
	if session.LastLogin != nil {
		fmt.Printf("Last seen: %s\n", session.LastLogin.Format("2006-01-02 15:04"))
	}
}
