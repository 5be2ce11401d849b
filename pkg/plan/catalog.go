package plan

import "github.com/moneta-ict/ledger/pkg/currency"

// Default returns the production catalog.
func Default() *Catalog { return NewCatalog(defaultPlans) }

const (
	co = currency.CountryColombia
	pe = currency.CountryPeru
)

var defaultPlans = []Plan{
	{
		ID: "starter", Name: "Starter", Icon: "🌱", DurationDays: 30,
		Description: "Plan inicial perfecto para comenzar tu camino en las inversiones",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("50000"), DailyReturn: dec("8600"), TotalReturn: dec("258000"), Percentage: dec("17.2")},
			pe: {MinInvestment: dec("130"), DailyReturn: dec("22"), TotalReturn: dec("660"), Percentage: dec("17.2")},
		},
		Features: []string{"Retiros cada 24 horas", "Sin comisiones ocultas", "Soporte prioritario"},
	},
	{
		ID: "basico", Name: "Básico", Icon: "💼", DurationDays: 30,
		Description: "Ideal para inversores que buscan rendimientos constantes",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("100000"), DailyReturn: dec("18000"), TotalReturn: dec("540000"), Percentage: dec("18.0")},
			pe: {MinInvestment: dec("260"), DailyReturn: dec("47"), TotalReturn: dec("1410"), Percentage: dec("18.0")},
		},
		Features: []string{"Mayor rendimiento diario", "Retiros inmediatos", "Asesoría personalizada"},
	},
	{
		ID: "silver", Name: "Silver", Icon: "🥈", DurationDays: 45,
		Description: "Plan intermedio con excelentes beneficios y rentabilidad",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("250000"), DailyReturn: dec("47500"), TotalReturn: dec("2137500"), Percentage: dec("19.0")},
			pe: {MinInvestment: dec("650"), DailyReturn: dec("123"), TotalReturn: dec("5535"), Percentage: dec("19.0")},
		},
		Features: []string{"Duración extendida", "Mayores rendimientos", "Bonos adicionales"},
	},
	{
		ID: "gold", Name: "Gold", Icon: "🥇", DurationDays: 60,
		Description: "Plan premium con rendimientos superiores al mercado",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("500000"), DailyReturn: dec("100000"), TotalReturn: dec("6000000"), Percentage: dec("20.0")},
			pe: {MinInvestment: dec("1300"), DailyReturn: dec("260"), TotalReturn: dec("15600"), Percentage: dec("20.0")},
		},
		Features: []string{"Rendimiento del 20%", "Plazo de 2 meses", "Gestor personal"},
	},
	{
		ID: "platinum", Name: "Platinum", Icon: "💎", DurationDays: 90,
		Description: "Exclusivo plan de alto rendimiento para inversores serios",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("1000000"), DailyReturn: dec("210000"), TotalReturn: dec("18900000"), Percentage: dec("21.0")},
			pe: {MinInvestment: dec("2600"), DailyReturn: dec("546"), TotalReturn: dec("49140"), Percentage: dec("21.0")},
		},
		Features: []string{"Rendimiento del 21%", "Plazo de 3 meses", "Reportes semanales"},
	},
	{
		ID: "diamond", Name: "Diamond", Icon: "💍", DurationDays: 120,
		Description: "Plan elite con los más altos rendimientos garantizados",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("2500000"), DailyReturn: dec("550000"), TotalReturn: dec("66000000"), Percentage: dec("22.0")},
			pe: {MinInvestment: dec("6500"), DailyReturn: dec("1430"), TotalReturn: dec("171600"), Percentage: dec("22.0")},
		},
		Features: []string{"Rendimiento del 22%", "Plazo de 4 meses", "Análisis detallados"},
	},
	{
		ID: "elite", Name: "Elite", Icon: "👑", DurationDays: 180,
		Description: "Máximo nivel de inversión con beneficios extraordinarios",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("5000000"), DailyReturn: dec("1150000"), TotalReturn: dec("207000000"), Percentage: dec("23.0")},
			pe: {MinInvestment: dec("13000"), DailyReturn: dec("2990"), TotalReturn: dec("538200"), Percentage: dec("23.0")},
		},
		Features: []string{"Rendimiento del 23%", "Plazo de 6 meses", "Acceso VIP a eventos"},
	},
	{
		ID: "vip", Name: "VIP", Icon: "🏆", DurationDays: 365,
		Description: "Plan anual para grandes inversionistas institucionales",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("10000000"), DailyReturn: dec("2400000"), TotalReturn: dec("876000000"), Percentage: dec("24.0")},
			pe: {MinInvestment: dec("26000"), DailyReturn: dec("6240"), TotalReturn: dec("2277600"), Percentage: dec("24.0")},
		},
		Features: []string{"Rendimiento del 24%", "Plan anual completo", "Beneficios exclusivos"},
	},
	{
		ID: "express", Name: "Express", Icon: "⚡", DurationDays: 15,
		Description: "Plan corto para rendimientos rápidos en 15 días",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("75000"), DailyReturn: dec("12750"), TotalReturn: dec("191250"), Percentage: dec("17.0")},
			pe: {MinInvestment: dec("195"), DailyReturn: dec("33"), TotalReturn: dec("495"), Percentage: dec("17.0")},
		},
		Features: []string{"Ciclo corto de 15 días", "Retornos rápidos", "Reinversión automática"},
	},
	{
		ID: "pro", Name: "Pro", Icon: "🎯", DurationDays: 60,
		Description: "Plan profesional con balance perfecto entre tiempo y rendimiento",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("750000"), DailyReturn: dec("157500"), TotalReturn: dec("9450000"), Percentage: dec("21.0")},
			pe: {MinInvestment: dec("1950"), DailyReturn: dec("409"), TotalReturn: dec("24540"), Percentage: dec("21.0")},
		},
		Features: []string{"Equilibrio óptimo", "Rendimiento del 21%", "Dashboard avanzado"},
	},
	{
		ID: "ultra", Name: "Ultra", Icon: "🚀", DurationDays: 90,
		Description: "Inversión superior con tecnología de punta",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("3000000"), DailyReturn: dec("660000"), TotalReturn: dec("59400000"), Percentage: dec("22.0")},
			pe: {MinInvestment: dec("7800"), DailyReturn: dec("1716"), TotalReturn: dec("154440"), Percentage: dec("22.0")},
		},
		Features: []string{"Tecnología AI avanzada", "Predicciones de mercado", "Soporte 24/7"},
	},
	{
		ID: "supreme", Name: "Supreme", Icon: "⭐", DurationDays: 180,
		Description: "El plan supremo para maximizar tu patrimonio",
		Terms: map[currency.Country]Terms{
			co: {MinInvestment: dec("7500000"), DailyReturn: dec("1725000"), TotalReturn: dec("310500000"), Percentage: dec("23.0")},
			pe: {MinInvestment: dec("19500"), DailyReturn: dec("4485"), TotalReturn: dec("807300"), Percentage: dec("23.0")},
		},
		Features: []string{"Máximo rendimiento", "Estrategias personalizadas", "Concierge financiero"},
	},
}
