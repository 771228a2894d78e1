package catalog

// Default returns the built-in routines.
func Default() *Catalog {
	c, err := New(defaultRoutines)
	if err != nil {
		panic("catalog: invalid built-in routines: " + err.Error())
	}
	return c
}

var defaultRoutines = []Routine{
	{
		Name: "Push Workout",
		Exercises: []Exercise{
			{Name: "Laufband", Image: "./images/treadmill.png", Category: Cardio},
			{Name: "Armkreise", Image: "./images/arm-circles.png", Category: Warmup},
			{Name: "Weltbester Stretch", Image: "./images/world-greatest-stretch.png", Category: Warmup},
			{Name: "90/90", Image: "./images/90-90.png", Category: Warmup},
			{Name: "Langhantel-Bankdrücken", Image: "./images/barbell-bench-press.png", Category: Chest},
			{Name: "Kabelzug-Flys im Sitzen (anderer Raum)", Image: "./images/cable-flys.gif", Category: Chest},
			{Name: "Kabelzug-Trizepsdrücken", Image: "./images/cable-triceps-pulldowns.png", Category: Triceps},
			{Name: "Kurzhantel-Seitheben im Sitzen (flacher Sitz)", Image: "./images/dumbbell-lateral-raises.gif", Category: Shoulders},
			{Name: "Hackenschmidt", Image: "./images/machine-hack-squats.png", Category: Legs},
			{Name: "Maschinen-Beinstrecker (Beine nach unten drücken)", Image: "./images/machine-leg-extension.png", Category: Legs},
		},
	},
	{
		Name: "Pull A",
		Exercises: []Exercise{
			{Name: "Laufband", Image: "./images/treadmill.png", Category: Cardio},
			{Name: "Armkreise", Image: "./images/arm-circles.png", Category: Warmup},
			{Name: "Katze Buckel / Rund Rücken", Image: "./images/quadruped-t-spine.png", Category: Warmup},
			{Name: "Knöchel-Mobilisation", Image: "./images/ankle-mobilization.png", Category: Warmup},
			{Name: "Klimmzüge mit Widerstandsband", Image: "./images/resistance-band-pullups.png", Category: Back},
			{Name: "Kabelzug-Rudern breit im Sitzen", Image: "./images/cable-row-wide.png", Category: Back},
			{Name: "Maschinen-Beincurls", Image: "./images/machine-leg-curls.png", Category: Legs},
			{Name: "Kurzhantel-Bizepscurls am Schrägbrett", Image: "./images/dumbbell-bicep-curls.png", Category: Biceps},
			{Name: "Maschinen-Hüftadduktion", Image: "./images/machine-hip-adduction.png", Category: Legs},
			{Name: "Crunches", Image: "./images/crunches.png", Category: Core},
		},
	},
	{
		Name: "Pull B",
		Exercises: []Exercise{
			{Name: "Laufband", Image: "./images/treadmill.png", Category: Cardio},
			{Name: "Armkreise", Image: "./images/arm-circles.png", Category: Warmup},
			{Name: "Katze Buckel / Rund Rücken", Image: "./images/quadruped-t-spine.png", Category: Warmup},
			{Name: "Knöchel-Mobilisation", Image: "./images/ankle-mobilization.png", Category: Warmup},
			{Name: "Klimmzüge mit Widerstandsband", Image: "./images/resistance-band-pullups.png", Category: Back},
			{Name: "HumanSport Latziehen", Image: "./images/lat-pulley.png", Category: Back},
			{Name: "Kabelzug-Facepulls", Image: "./images/cable-face-pulls.png", Category: Shoulders},
			{Name: "Kurzhantel-Bizepscurls am Schrägbrett", Image: "./images/dumbbell-bicep-curls.png", Category: Biceps},
			{Name: "Maschinen-Beincurls (Beine nach unten drücken)", Image: "./images/machine-leg-curls.png", Category: Legs},
			{Name: "Maschinen-Adduktoren (Kenos Lieblingsübung)", Image: "./images/machine-hip-adduction.png", Category: Legs},
			{Name: "T-Bar-Rudern", Image: "./images/t-bar-row.png", Category: Back},
		},
	},
}
