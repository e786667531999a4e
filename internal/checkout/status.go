package checkout

// State of a single checkout attempt. Terminal states are BasketRetired
// (success) and Failed.
type State string

const (
	StateValidating    State = "VALIDATING"
	StateOrderCreated  State = "ORDER_CREATED"
	StateReserved      State = "RESERVED"
	StateBasketRetired State = "BASKET_RETIRED"
	StateFailed        State = "FAILED"
)

var validNext = map[State]map[State]bool{
	StateValidating:    {StateOrderCreated: true, StateFailed: true},
	StateOrderCreated:  {StateReserved: true, StateFailed: true},
	StateReserved:      {StateBasketRetired: true, StateFailed: true},
	StateBasketRetired: {},
	StateFailed:        {},
}

func CanTransition(from, to State) bool {
	return validNext[from][to]
}

// FailReason distinguishes shopper-correctable outcomes from system faults.
type FailReason string

const (
	ReasonInvalidInput           FailReason = "INVALID_INPUT"
	ReasonEmptyBasket            FailReason = "EMPTY_BASKET"
	ReasonReservationUnreachable FailReason = "RESERVATION_UNREACHABLE"
	ReasonBasketRetirement       FailReason = "BASKET_RETIREMENT"
	ReasonInternal               FailReason = "INTERNAL"
)
