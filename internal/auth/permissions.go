package auth

// Permission scopes granted by the identity provider.
const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

// Permissions lists every scope the API checks.
func Permissions() []string {
	return []string{
		PermissionGetDrinksDetail,
		PermissionPostDrinks,
		PermissionPatchDrinks,
		PermissionDeleteDrinks,
	}
}
