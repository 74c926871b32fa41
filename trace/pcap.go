package trace

import (
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// packetSource is implemented by both pcapgo.Reader and pcapgo.NgReader.
type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// ReadPcap reads a pcap file. Only the IP header is decoded.
func ReadPcap(r io.Reader) ([]Flow, error) {
	src, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, err
	}
	return readPackets(src)
}

// ReadPcapNg reads a pcapng file.
func ReadPcapNg(r io.Reader) ([]Flow, error) {
	src, err := pcapgo.NewNgReader(r, pcapgo.DefaultNgReaderOptions)
	if err != nil {
		return nil, err
	}
	return readPackets(src)
}

func readPackets(src packetSource) ([]Flow, error) {
	var packets []packet
	var first gopacket.CaptureInfo
	for {
		data, ci, err := src.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		p := gopacket.NewPacket(data, src.LinkType(), gopacket.Lazy)
		var key Key
		var size int
		if ip4, ok := p.Layer(layers.LayerTypeIPv4).(*layers.IPv4); ok {
			key = Key{Src: ip4.SrcIP.String(), Dst: ip4.DstIP.String()}
			size = int(ip4.Length)
		} else if ip6, ok := p.Layer(layers.LayerTypeIPv6).(*layers.IPv6); ok {
			key = Key{Src: ip6.SrcIP.String(), Dst: ip6.DstIP.String()}
			size = 40 + int(ip6.Length)
		} else {
			continue
		}
		if len(packets) == 0 {
			first = ci
		}
		packets = append(packets, packet{
			key:  key,
			time: ci.Timestamp.Sub(first.Timestamp).Seconds(),
			size: size,
		})
	}
	return group(packets)
}
