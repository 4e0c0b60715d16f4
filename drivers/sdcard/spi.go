package sdcard

import (
	"encoding/binary"

	"github.com/sigurn/crc8"
)

// SPI is a byte-wide SPI master connected to the card.
type SPI interface {
	Select(bool)
	Transfer(b byte) byte
}

type command byte

const (
	cmdGoIdle      command = 0
	cmdSendIfCond  command = 8
	cmdSetBlockLen command = 16
	cmdReadBlock   command = 17
	cmdAppCmd      command = 55
	cmdReadOCR     command = 58
	acmdSendOpCond command = 41
)

const (
	r1Idle           = 0x01
	r1IllegalCommand = 0x04
	tokenStartBlock  = 0xfe

	ocrCCS = 1 << 30
	hcs    = 1 << 30

	ifCondPattern = 0x1aa

	responseRetries = 8
	idleRetries     = 16
	opCondRetries   = 4096
	tokenRetries    = 8192
)

// CRC7 as used by SD commands, computed in the upper 7 bits of a CRC8.
var crc7 = crc8.MakeTable(crc8.Params{
	Poly:   0x12,
	Init:   0x00,
	RefIn:  false,
	RefOut: false,
	XorOut: 0x00,
	Check:  0xea,
	Name:   "CRC-7 SD<<1",
})

func commandCRC(frame []byte) byte {
	return crc8.Checksum(frame, crc7) | 1
}

// SPICard speaks the SD card SPI protocol.
type SPICard struct {
	spi  SPI
	hc   bool
	init bool
	cmd  [6]byte
}

func NewSPICard(spi SPI) *SPICard {
	return &SPICard{spi: spi}
}

var _ Card = (*SPICard)(nil)

func (c *SPICard) HighCapacity() bool { return c.hc }

func (c *SPICard) command(cmd command, arg uint32) byte {
	c.cmd[0] = 0x40 | byte(cmd)
	binary.BigEndian.PutUint32(c.cmd[1:5], arg)
	c.cmd[5] = commandCRC(c.cmd[:5])

	c.spi.Transfer(0xff)
	for _, b := range c.cmd {
		c.spi.Transfer(b)
	}
	r := byte(0xff)
	for i := 0; i < responseRetries && r&0x80 != 0; i++ {
		r = c.spi.Transfer(0xff)
	}
	return r
}

func (c *SPICard) appCommand(cmd command, arg uint32) byte {
	if r := c.command(cmdAppCmd, 0); r&^r1Idle != 0 {
		return r
	}
	return c.command(cmd, arg)
}

func (c *SPICard) readUint32() uint32 {
	var b [4]byte
	for i := range b {
		b[i] = c.spi.Transfer(0xff)
	}
	return binary.BigEndian.Uint32(b[:])
}

// Init brings the card from power up into data transfer mode.
func (c *SPICard) Init() (err error) {
	c.init, c.hc = false, false

	c.spi.Select(false)
	for n := 0; n < 10; n++ {
		c.spi.Transfer(0xff) // at least 74 clocks with CS high
	}
	c.spi.Select(true)
	defer c.spi.Select(false)

	r := byte(0xff)
	for i := 0; i < idleRetries && r != r1Idle; i++ {
		r = c.command(cmdGoIdle, 0)
	}
	if r != r1Idle {
		return ErrNoCard
	}

	v2 := false
	if r = c.command(cmdSendIfCond, ifCondPattern); r&r1IllegalCommand == 0 {
		if c.readUint32()&0xfff != ifCondPattern {
			return ErrVoltage
		}
		v2 = true
	}

	var arg uint32
	if v2 {
		arg = hcs
	}
	r = 0xff
	for i := 0; i < opCondRetries && r != 0; i++ {
		r = c.appCommand(acmdSendOpCond, arg)
	}
	if r != 0 {
		return ErrTimeout
	}

	if v2 {
		if r = c.command(cmdReadOCR, 0); r != 0 {
			return ErrNoCard
		}
		c.hc = c.readUint32()&ocrCCS != 0
	}
	if !c.hc {
		if r = c.command(cmdSetBlockLen, BlockSize); r != 0 {
			return ErrNoCard
		}
	}

	c.init = true
	return nil
}

func (c *SPICard) ReadBlock(dst []byte, lba uint32) error {
	if !c.init {
		return ErrNotInit
	}
	if len(dst) < BlockSize {
		return ErrShortBuffer
	}

	c.spi.Select(true)
	defer c.spi.Select(false)

	addr := lba
	if !c.hc {
		addr *= BlockSize
	}
	if r := c.command(cmdReadBlock, addr); r != 0 {
		return ErrRead
	}

	token := byte(0xff)
	for i := 0; i < tokenRetries && token == 0xff; i++ {
		token = c.spi.Transfer(0xff)
	}
	if token != tokenStartBlock {
		return ErrTimeout
	}
	for i := range dst[:BlockSize] {
		dst[i] = c.spi.Transfer(0xff)
	}
	c.spi.Transfer(0xff) // CRC16 isn't checked in SPI mode
	c.spi.Transfer(0xff)
	return nil
}
