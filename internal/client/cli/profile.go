package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/OleoMar/alphawave/internal/client/models"
)

// UpdateProfile prompts for new profile values. Empty answers leave the
// corresponding fields unchanged.
func (a *App) UpdateProfile(ctx context.Context) {
	patch := models.ProfilePatch{}

	fullName, err := GetSimpleText(a.reader, "Full name (leave empty to keep)", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	if fullName != "" {
		patch.FullName = &fullName
	}

	phone, err := GetSimpleText(a.reader, "Phone (leave empty to keep)", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	if phone != "" {
		patch.Phone = &phone
	}

	gender, err := GetSimpleText(a.reader, "Gender (leave empty to keep)", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	if gender != "" {
		patch.Gender = &gender
	}

	dob, err := GetSimpleText(a.reader, "Date of birth (leave empty to keep)", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	if dob != "" {
		patch.DateOfBirth = &dob
	}

	if err := a.identity.UpdateProfile(ctx, patch); err != nil {
		fmt.Println(err.Error())
		return
	}
	fmt.Println("Profile updated.")
}

func (a *App) ChangePassword(ctx context.Context) {
	current, err := GetPassword("Current password", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	next, err := GetPassword("New password", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	if err := a.identity.ChangePassword(ctx, current, next); err != nil {
		fmt.Println(err.Error())
		return
	}
	fmt.Println("Password changed.")
}

func (a *App) DeleteAccount(ctx context.Context) {
	ok, err := GetYesNo(a.reader, "Delete your account? This cannot be undone.", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	if !ok {
		fmt.Println("Cancelled.")
		return
	}

	if err := a.identity.DeleteAccount(ctx); err != nil {
		fmt.Println(err.Error())
		return
	}
	fmt.Println("Account deleted.")
}
