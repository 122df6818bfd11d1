// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "DairyTrack-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "dairytrack.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)
	viper.SetDefault("main.log.rotationday", time.Sunday.String())

	viper.SetDefault("sheets.baseurl", "https://docs.google.com/spreadsheets/d")
	viper.SetDefault("sheets.timeout", 30*time.Second)
	viper.SetDefault("sheets.cachettl", 600*time.Second)
	viper.SetDefault("sheets.timestampcolumn", "Timestamp")

	viper.SetDefault("sheets.production.id", "")
	viper.SetDefault("sheets.production.sheet", "dailylog")
	viper.SetDefault("sheets.distributionmorning.id", "")
	viper.SetDefault("sheets.distributionmorning.sheet", "morning")
	viper.SetDefault("sheets.distributionevening.id", "")
	viper.SetDefault("sheets.distributionevening.sheet", "evening")
	viper.SetDefault("sheets.expense.id", "")
	viper.SetDefault("sheets.expense.sheet", "expense")
	viper.SetDefault("sheets.payment.id", "")
	viper.SetDefault("sheets.payment.sheet", "payment")
	viper.SetDefault("sheets.investment.id", "")
	viper.SetDefault("sheets.investment.sheet", "investment")

	viper.SetDefault("validation.startdate", "2025-11-01")
	viper.SetDefault("validation.parties", []string{"Bipin Kumar"})

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
}
