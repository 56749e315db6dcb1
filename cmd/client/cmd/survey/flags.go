package survey

import (
	"fmt"
	"time"

	"farmsurvey/internal/domain/survey"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// surveyFlags поля анкеты, общие для add и edit. Применяются только
// явно переданные флаги.
type surveyFlags struct {
	farmer, phone, village, island      string
	household                           int
	lat, lng, accuracy, farmSize        float64
	crops                               []string
	cattle, pigs, poultry, goats        int
	pest, severity, pestDesc, treatment string
	harvest, notes                      string
	photos                              []string
	photoType                           string
}

func (f *surveyFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.farmer, "farmer", "", "имя фермера")
	fs.IntVar(&f.household, "household", 0, "число членов семьи")
	fs.StringVar(&f.phone, "phone", "", "телефон")
	fs.StringVar(&f.village, "village", "", "деревня")
	fs.StringVar(&f.island, "island", "", "остров (Efate, Tanna, Malekula, Espiritu Santo, Pentecost, Ambrym, Epi, Other)")
	fs.Float64Var(&f.lat, "lat", 0, "широта")
	fs.Float64Var(&f.lng, "lng", 0, "долгота")
	fs.Float64Var(&f.accuracy, "accuracy", 0, "точность GPS, м")
	fs.Float64Var(&f.farmSize, "farm-size", 0, "площадь хозяйства, га")
	fs.StringSliceVar(&f.crops, "crops", nil, "культуры через запятую")
	fs.IntVar(&f.cattle, "cattle", 0, "коровы")
	fs.IntVar(&f.pigs, "pigs", 0, "свиньи")
	fs.IntVar(&f.poultry, "poultry", 0, "птица")
	fs.IntVar(&f.goats, "goats", 0, "козы")
	fs.StringVar(&f.pest, "pest", "", "вредитель или болезнь")
	fs.StringVar(&f.severity, "severity", "", "степень поражения (none, low, medium, high)")
	fs.StringVar(&f.pestDesc, "pest-description", "", "описание поражения")
	fs.StringVar(&f.treatment, "treatment", "", "примененная обработка")
	fs.StringVar(&f.harvest, "harvest", "", "дата урожая, ГГГГ-ММ-ДД")
	fs.StringVar(&f.notes, "notes", "", "заметки")
	fs.StringArrayVar(&f.photos, "photo", nil, "путь к фотографии (можно повторять)")
	fs.StringVar(&f.photoType, "photo-type", "field", "тип фотографий")
}

func (f *surveyFlags) apply(cmd *cobra.Command, s *survey.Survey) error {
	changed := cmd.Flags().Changed

	setString := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	setString("farmer", &s.FarmerName, f.farmer)
	setString("phone", &s.Phone, f.phone)
	setString("village", &s.Village, f.village)
	setString("island", &s.Island, f.island)
	setString("pest", &s.PestIssues, f.pest)
	setString("severity", &s.PestSeverity, f.severity)
	setString("pest-description", &s.PestDescription, f.pestDesc)
	setString("treatment", &s.TreatmentUsed, f.treatment)
	setString("notes", &s.Notes, f.notes)

	if changed("household") {
		v := f.household
		s.HouseholdSize = &v
	}
	if changed("lat") {
		v := f.lat
		s.Latitude = &v
	}
	if changed("lng") {
		v := f.lng
		s.Longitude = &v
	}
	if changed("accuracy") {
		v := f.accuracy
		s.GPSAccuracy = &v
	}
	if changed("farm-size") {
		v := f.farmSize
		s.FarmSize = &v
	}
	if changed("crops") {
		s.Crops = f.crops
	}
	if changed("cattle") {
		s.Livestock.Cattle = f.cattle
	}
	if changed("pigs") {
		s.Livestock.Pigs = f.pigs
	}
	if changed("poultry") {
		s.Livestock.Poultry = f.poultry
	}
	if changed("goats") {
		s.Livestock.Goats = f.goats
	}
	if changed("harvest") {
		d, err := f.harvestDate()
		if err != nil {
			return err
		}
		s.HarvestDate = &d
	}

	return nil
}

// check проверяет значения, которые нельзя разобрать, до изменения анкеты
func (f *surveyFlags) check(cmd *cobra.Command) error {
	if cmd.Flags().Changed("harvest") {
		if _, err := f.harvestDate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *surveyFlags) harvestDate() (time.Time, error) {
	d, err := time.Parse(dateLayout, f.harvest)
	if err != nil {
		return time.Time{}, fmt.Errorf("неверная дата урожая %q, ожидается ГГГГ-ММ-ДД", f.harvest)
	}
	return d, nil
}
