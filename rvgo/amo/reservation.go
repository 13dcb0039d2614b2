package amo

// Reservation is the load-reserved address of one execution context.
// The zero value is Free. Each hart must own its own Reservation: sharing one between
// contexts lets one context's SC consume another context's LR.
type Reservation struct {
	Addr  U64  `json:"addr"`
	Valid bool `json:"valid"`
}

// Reserve establishes a reservation on addr, replacing any previous one.
func (r *Reservation) Reserve(addr U64) {
	r.Addr = addr
	r.Valid = true
}

// Consume checks a store-conditional to addr against the reservation and clears it.
// A mismatching attempt still invalidates the outstanding reservation.
func (r *Reservation) Consume(addr U64) bool {
	ok := r.Valid && eq64(r.Addr, addr) != 0
	r.Clear()
	return ok
}

func (r *Reservation) Clear() {
	*r = Reservation{}
}

// Reserved returns the reserved address, and false if the state is Free.
func (r *Reservation) Reserved() (U64, bool) {
	return r.Addr, r.Valid
}
