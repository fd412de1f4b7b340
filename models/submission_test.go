package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuItemDisplayName(t *testing.T) {
	en := MenuItem{ItemNameEN: "Latte", ItemNameAR: "لاتيه"}
	assert.Equal(t, "Latte", en.DisplayName())

	ar := MenuItem{ItemNameAR: "لاتيه"}
	assert.Equal(t, "لاتيه", ar.DisplayName())

	none := MenuItem{}
	assert.Empty(t, none.DisplayName())
}

func TestSubmissionMenuItemsRoundTrip(t *testing.T) {
	sub := &Submission{}

	items, err := sub.MenuItemList()
	require.NoError(t, err)
	assert.Empty(t, items, "unset column decodes to an empty list")

	saved := []MenuItem{
		{ItemNameEN: "Latte", Price: "20", Image: "latte_abc.png",
			Addons: []Addon{{NameEN: "Extra shot", Price: "5"}}},
	}
	require.NoError(t, sub.SetMenuItems(saved))

	loaded, err := sub.MenuItemList()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Latte", loaded[0].ItemNameEN)
	require.Len(t, loaded[0].Addons, 1)
	assert.Equal(t, "Extra shot", loaded[0].Addons[0].NameEN)

	// Wholesale replace, not append
	require.NoError(t, sub.SetMenuItems([]MenuItem{}))
	loaded, err = sub.MenuItemList()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSubmissionLocationRoundTrip(t *testing.T) {
	sub := &Submission{}

	loc, err := sub.Location()
	require.NoError(t, err)
	assert.Nil(t, loc, "never-saved location decodes to nil")

	saved := &Location{
		Schedule: map[string]DaySchedule{
			"monday": {From: ClockTime{H: "9", M: "00", P: "AM"}, To: ClockTime{H: "5", M: "00", P: "PM"}},
			"friday": {Closed: true},
		},
		PickupLocation:   "https://maps.example/abc",
		OperationalPhone: "+97450000000",
	}
	require.NoError(t, sub.SetLocation(saved))

	loaded, err := sub.Location()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "https://maps.example/abc", loaded.PickupLocation)
	assert.True(t, loaded.Schedule["friday"].Closed)
	assert.Equal(t, "9", loaded.Schedule["monday"].From.H)
}

func TestSubmissionExpiresAt(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := &Submission{CreatedAt: created}

	assert.Equal(t, created.Add(72*time.Hour), sub.ExpiresAt(72))
}

func TestDocTypeOf(t *testing.T) {
	assert.Equal(t, "Trade_License", DocTypeOf("Trade_License_My_Cafe_1.pdf"))
	assert.Equal(t, "CR", DocTypeOf("CR_My_Cafe_2.png"))
	assert.Equal(t, "Home_License", DocTypeOf("Home_License_Kitchen_1.jpg"))
	assert.Empty(t, DocTypeOf("random.pdf"))
	assert.Empty(t, DocTypeOf("docs-package.zip"))
}

func TestRequiredDocTypes(t *testing.T) {
	assert.Equal(t, []string{"Home_License", "IBAN_Stamped", "QID"}, RequiredDocTypes(BusinessTypeHome))
	assert.Equal(t, []string{"CR", "Trade_License", "Computer_Card", "IBAN_Stamped", "QID"}, RequiredDocTypes(BusinessTypeCommercial))
	assert.Nil(t, RequiredDocTypes("restaurants_cafes"))
}

func TestIsRecognizedDocType(t *testing.T) {
	assert.True(t, IsRecognizedDocType("QID"))
	assert.True(t, IsRecognizedDocType("IBAN_Stamped"))
	assert.False(t, IsRecognizedDocType("Passport"))
}
