package memory

import "time"

// Clock is the time source for the MBC3 real time clock.
type Clock interface {
	Now() time.Time
}

type systemClockFunc func() time.Time

func (s systemClockFunc) Now() time.Time {
	return s()
}

// SystemClock reads the host wall clock.
var SystemClock Clock = systemClockFunc(time.Now)

const (
	rtcSeconds = iota
	rtcMinutes
	rtcHours
	rtcDaysLow
	rtcDaysHigh
)

const (
	rtcHaltBit  = 0x40
	rtcCarryBit = 0x80
)

// rtc holds the MBC3 clock registers. Live registers advance lazily from
// the host clock; reads see the latched copy.
type rtc struct {
	live     [5]uint8
	latched  [5]uint8
	latchArm bool
	last     int64
}

func (r *rtc) reset(now time.Time) {
	*r = rtc{last: now.Unix()}
}

func (r *rtc) seconds() int64 {
	days := int64(r.live[rtcDaysLow]) | int64(r.live[rtcDaysHigh]&0x01)<<8
	return int64(r.live[rtcSeconds]) + 60*int64(r.live[rtcMinutes]) + 3600*int64(r.live[rtcHours]) + 86400*days
}

// advance moves the live registers forward to now, unless halted.
func (r *rtc) advance(now time.Time) {
	elapsed := now.Unix() - r.last
	r.last = now.Unix()
	if r.live[rtcDaysHigh]&rtcHaltBit != 0 || elapsed <= 0 {
		return
	}

	total := r.seconds() + elapsed
	days := total / 86400
	flags := r.live[rtcDaysHigh] & (rtcHaltBit | rtcCarryBit)
	if days > 0x1FF {
		flags |= rtcCarryBit
		days &= 0x1FF
	}

	r.live[rtcSeconds] = uint8(total % 60)
	r.live[rtcMinutes] = uint8(total / 60 % 60)
	r.live[rtcHours] = uint8(total / 3600 % 24)
	r.live[rtcDaysLow] = uint8(days)
	r.live[rtcDaysHigh] = flags | uint8(days>>8)&0x01
}

// writeLatch handles writes to 0x6000-0x7FFF: 0x00 then 0x01 latches.
func (r *rtc) writeLatch(value uint8, now time.Time) {
	if value == 0x00 {
		r.latchArm = true
		return
	}
	if value == 0x01 && r.latchArm {
		r.advance(now)
		r.latched = r.live
	}
	r.latchArm = false
}

func (r *rtc) read(reg uint8) uint8 {
	return r.latched[reg]
}

func (r *rtc) write(reg, value uint8, now time.Time) {
	r.advance(now)
	r.live[reg] = value
	r.latched[reg] = value
}
