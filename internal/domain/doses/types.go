package doses

// Status define el ciclo de vida de una dosis.
// UPCOMING es el estado inicial; TAKEN es terminal. MISSED lo produce
// un barrido externo (fuera de este servicio), nunca este código.
// @Enum UPCOMING, TAKEN, MISSED
type Status string

const (
	StatusUpcoming Status = "UPCOMING"
	StatusTaken    Status = "TAKEN"
	StatusMissed   Status = "MISSED"
)
